package cmd

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mdobak/go-xerrors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-labels/agreement"
	"github.com/RyanBlaney/sonido-labels/label"
	"github.com/RyanBlaney/sonido-labels/logging"
	"github.com/RyanBlaney/sonido-labels/store"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the label toolkit over HTTP",
	Long: `Exposes encoding, decoding, and backend comparison over a small
JSON API, plus read access to manifests stored in the local database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

type labelServer struct {
	encoder    *label.TargetEncoder
	decoder    *label.PredictionDecoder
	comparator *agreement.Comparator
	store      *store.SQLiteClient
	logger     logging.Logger
}

type encodeRequest struct {
	Labels []string `json:"labels"`
	Mode   string   `json:"mode"`
}

type decodeRequest struct {
	Scores []float64 `json:"scores"`
	TopK   int       `json:"top_k"`
}

type compareRequest struct {
	ScoresA []float64 `json:"scores_a"`
	ScoresB []float64 `json:"scores_b"`
}

type classEntry struct {
	ClassIndex int    `json:"class_index"`
	Name       string `json:"name"`
}

func (s *labelServer) badRequest(w http.ResponseWriter, err error, msg string) {
	err = xerrors.New(err)
	s.logger.Error(err, msg)
	http.Error(w, msg, http.StatusBadRequest)
}

func (s *labelServer) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, err, "invalid encode request")
		return
	}

	mode := label.MultiHot
	if req.Mode != "" {
		parsed, err := label.ParseEncodeMode(req.Mode)
		if err != nil {
			s.badRequest(w, err, "invalid encode mode")
			return
		}
		mode = parsed
	}

	labels := make([]label.RawLabel, len(req.Labels))
	for i, token := range req.Labels {
		labels[i] = label.ClassifyToken(token)
	}

	targets, err := s.encoder.EncodeBatch(labels, mode)
	if err != nil {
		s.badRequest(w, err, "encoding failed")
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"mode":    mode.String(),
		"targets": targets,
	})
}

func (s *labelServer) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, err, "invalid decode request")
		return
	}

	notes, err := s.decoder.Decode(req.Scores, req.TopK)
	if err != nil {
		s.badRequest(w, err, "decoding failed")
		return
	}

	json.NewEncoder(w).Encode(notes)
}

func (s *labelServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, err, "invalid compare request")
		return
	}

	report, err := s.comparator.Compare(req.ScoresA, req.ScoresB)
	if err != nil {
		s.badRequest(w, err, "comparison failed")
		return
	}

	json.NewEncoder(w).Encode(report)
}

func (s *labelServer) handleClasses(w http.ResponseWriter, r *http.Request) {
	classes := make([]classEntry, label.NumClasses)
	for i := range classes {
		classes[i] = classEntry{ClassIndex: i, Name: label.ClassName(i)}
	}
	json.NewEncoder(w).Encode(classes)
}

func (s *labelServer) handleListManifests(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListManifests()
	if err != nil {
		err = xerrors.New(err)
		s.logger.Error(err, "failed to list manifests")
		http.Error(w, "failed to list manifests", http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []store.ManifestSummary{}
	}
	json.NewEncoder(w).Encode(summaries)
}

func (s *labelServer) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	manifest, found, err := s.store.GetManifest(id)
	if err != nil {
		err = xerrors.New(err)
		s.logger.Error(err, "failed to load manifest")
		http.Error(w, "failed to load manifest", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "manifest not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(manifest)
}

func serve() error {
	client, err := store.NewSQLiteClient(cfg.Store.DSN)
	if err != nil {
		return err
	}

	srv := &labelServer{
		encoder:    label.NewTargetEncoder(),
		decoder:    label.NewPredictionDecoder(),
		comparator: agreement.NewComparatorWithTopK(cfg.Agreement.TopK),
		store:      client,
		logger: logging.WithFields(logging.Fields{
			"component": "http_server",
		}),
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/encode", srv.handleEncode).Methods("POST")
	router.HandleFunc("/decode", srv.handleDecode).Methods("POST")
	router.HandleFunc("/compare", srv.handleCompare).Methods("POST")
	router.HandleFunc("/classes", srv.handleClasses).Methods("GET")
	router.HandleFunc("/manifests", srv.handleListManifests).Methods("GET")
	router.HandleFunc("/manifests/{id}", srv.handleGetManifest).Methods("GET")

	handler := cors.Default().Handler(router)

	srv.logger.Info("listening", logging.Fields{"addr": cfg.Server.Addr})
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
	return nil
}
