package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mkeskkula/haaldus/internal/auth"
	"github.com/mkeskkula/haaldus/internal/recordings"
	"github.com/mkeskkula/haaldus/internal/scoring"
	"github.com/mkeskkula/haaldus/internal/store"
	"github.com/mkeskkula/haaldus/pkg/provider/asr"
)

// packResponse is the JSON body for GET /daily-pack.
type packResponse struct {
	Level          string             `json:"level"`
	Category       string             `json:"category,omitempty"`
	Items          []wordItemJSON     `json:"items"`
	TotalAvailable int                `json:"total_available"`
}

type wordItemJSON struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IPA         string `json:"ipa"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
	Level       string `json:"level"`
	Category    string `json:"category"`
}

// handleDailyPack serves GET /daily-pack?limit&level&category.
func (s *Server) handleDailyPack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	level := q.Get("level")
	if level == "" {
		level = "A1"
	}
	limit := 10
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, badRequest("limit %q must be a positive integer", raw))
			return
		}
		limit = n
	}

	pack, err := s.catalog.Pack(level, q.Get("category"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := packResponse{
		Level:          pack.Level,
		Category:       pack.Category,
		Items:          make([]wordItemJSON, len(pack.Items)),
		TotalAvailable: pack.TotalAvailable,
	}
	for i, item := range pack.Items {
		resp.Items[i] = wordItemJSON(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleWordCategories serves GET /word-categories: level → category names.
func (s *Server) handleWordCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories())
}

// scoreRequest is the JSON body for POST /pronunciation/score. Multipart
// submissions carry the same fields as form values plus an audio file.
type scoreRequest struct {
	Word       string `json:"word"`
	TargetText string `json:"target_text"`
	TargetIPA  string `json:"target_ipa"`
	ASRText    string `json:"asr_text"`
	WordID     string `json:"word_id"`
}

// scoreResponse extends the scoring result with the hypothesis text that was
// scored, so clients can show what the recogniser heard.
type scoreResponse struct {
	scoring.Result
	ASRText string `json:"asr_text"`
}

// handleScore serves POST /pronunciation/score. The hypothesis text comes
// either from the asr_text field or from transcribing an uploaded audio file;
// providing neither is a client input error. A successful score appends one
// event to the user's history.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	req, audio, err := s.parseScoreRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if req.Word == "" || req.TargetText == "" {
		writeError(w, r, badRequest("word and target_text are required"))
		return
	}

	input := "text"
	hypothesis := req.ASRText
	if hypothesis == "" {
		if audio == nil {
			writeError(w, r, badRequest("either asr_text or an audio file is required"))
			return
		}
		input = "audio"
		hypothesis, err = s.transcribeSample(r, *audio)
		if err != nil {
			s.metrics.ScoreRequests.Add(r.Context(), 1, metric.WithAttributes(
				attribute.String("input", input), attribute.String("status", "error")))
			writeError(w, r, err)
			return
		}
	}

	result := s.engine.Score(scoring.Target{
		Word: req.Word,
		Text: req.TargetText,
		IPA:  req.TargetIPA,
	}, hypothesis)

	ev := store.ScoreEvent{
		ID:         s.newID(),
		UserID:     userID,
		WordID:     s.resolveWordID(req),
		Score:      result.Final,
		Hypothesis: hypothesis,
		CreatedAt:  s.now(),
	}
	if err := s.events.Append(r.Context(), ev); err != nil {
		writeError(w, r, fmt.Errorf("append score event: %w", err))
		return
	}

	s.metrics.ScoreRequests.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("input", input), attribute.String("status", "ok")))

	writeJSON(w, http.StatusOK, scoreResponse{Result: result, ASRText: hypothesis})
}

// audioUpload is an in-memory copy of an uploaded audio file.
type audioUpload struct {
	data     []byte
	filename string
}

// parseScoreRequest accepts both application/json and multipart/form-data
// submissions. Multipart temp files are removed before returning regardless
// of outcome.
func (s *Server) parseScoreRequest(r *http.Request) (scoreRequest, *audioUpload, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "application/json":
		var req scoreRequest
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxUploadBytes)).Decode(&req); err != nil {
			return scoreRequest{}, nil, badRequest("malformed JSON body: %v", err)
		}
		return req, nil, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return scoreRequest{}, nil, badRequest("malformed multipart body: %v", err)
		}
		// The parser may have spooled large parts to disk; clean them up on
		// every exit path.
		defer r.MultipartForm.RemoveAll()

		req := scoreRequest{
			Word:       r.FormValue("word"),
			TargetText: r.FormValue("target_text"),
			TargetIPA:  r.FormValue("target_ipa"),
			ASRText:    r.FormValue("asr_text"),
			WordID:     r.FormValue("word_id"),
		}

		audio, err := readFormFile(r, "file")
		if err != nil {
			return scoreRequest{}, nil, err
		}
		return req, audio, nil

	default:
		return scoreRequest{}, nil, badRequest("unsupported content type %q", ct)
	}
}

// readFormFile copies the named multipart file into memory. A missing file is
// not an error — the caller decides whether audio was required.
func readFormFile(r *http.Request, field string) (*audioUpload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("read %s upload: %v", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	return &audioUpload{data: data, filename: header.Filename}, nil
}

// transcribeSample runs the ASR backend on an uploaded sample, recording
// latency and error metrics. The configured timeout and concurrency bound
// are enforced by the provider wrapper, not here.
func (s *Server) transcribeSample(r *http.Request, upload audioUpload) (string, error) {
	if s.transcribe == nil {
		s.metrics.ASRErrors.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", "unavailable")))
		return "", unavailable("no transcription backend configured", asr.ErrUnavailable)
	}

	start := time.Now()
	res, err := s.transcribe.Transcribe(r.Context(), asr.Sample{
		Data:     upload.data,
		Filename: upload.filename,
	})
	s.metrics.TranscriptionDuration.Record(r.Context(), time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, asr.ErrUnavailable) {
			s.metrics.ASRErrors.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", "unavailable")))
			return "", err
		}
		s.metrics.ASRErrors.Add(r.Context(), 1, metric.WithAttributes(attribute.String("kind", "failed")))
		return "", upstream("transcription failed", err)
	}
	return strings.TrimSpace(res.Text), nil
}

// resolveWordID prefers an explicit word_id, then a catalog lookup by target
// text, then a lowercased fallback so events from off-catalog words still
// group together.
func (s *Server) resolveWordID(req scoreRequest) string {
	if req.WordID != "" {
		return req.WordID
	}
	if item, ok := s.catalog.FindByText(req.TargetText); ok {
		return item.ID
	}
	return "w_" + strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Word), " ", "_"))
}

// handleProgressSummary serves GET /progress/summary for the authenticated
// user.
func (s *Server) handleProgressSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	summary, err := s.aggregator.Summarize(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	for _, u := range summary.NewlyUnlocked {
		s.metrics.AchievementUnlocks.Add(r.Context(), 1, metric.WithAttributes(attribute.String("type", u.Type)))
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleUploadRecording serves POST /recordings (multipart word_id + file).
func (s *Server) handleUploadRecording(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, badRequest("malformed multipart body: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	wordID := r.FormValue("word_id")
	if wordID == "" {
		writeError(w, r, badRequest("word_id is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, badRequest("an audio file is required"))
		return
	}
	defer file.Close()

	rec, err := s.recordings.Save(wordID, header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.metrics.RecordingUploads.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, rec)
}

// handleListRecordings serves GET /recordings?word_id=.
func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	recs, err := s.recordings.List(r.URL.Query().Get("word_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []recordings.Recording{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleStorageInfo serves GET /storage/info.
func (s *Server) handleStorageInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.recordings.Info()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
