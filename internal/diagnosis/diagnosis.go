// Package diagnosis turns a submitted image into a diagnosis record.
package diagnosis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/dermascan-api/internal/apperr"
	"github.com/Brownie44l1/dermascan-api/internal/cache"
	"github.com/Brownie44l1/dermascan-api/internal/history"
	"github.com/Brownie44l1/dermascan-api/internal/imaging"
	"github.com/Brownie44l1/dermascan-api/internal/lesion"
	"github.com/Brownie44l1/dermascan-api/internal/model"
)

// Diagnosis is the payload returned for one image.
type Diagnosis struct {
	ID             string             `json:"id"`
	Diagnosis      string             `json:"diagnosis"`
	Confidence     float64            `json:"confidence"`
	Description    string             `json:"description"`
	Symptoms       string             `json:"symptoms"`
	RiskFactors    string             `json:"risk_factors"`
	Treatment      string             `json:"treatment"`
	Urgency        string             `json:"urgency"`
	Recommendation string             `json:"recommendation"`
	Predictions    map[string]float64 `json:"predictions"`
	CreatedAt      time.Time          `json:"created_at"`
	Cached         bool               `json:"cached,omitempty"`
}

type Options struct {
	Classifier   model.Classifier
	Preprocessor *imaging.Preprocessor
	Classes      []string
	Validator    *imaging.Validator
	Cache        cache.Cache
	History      history.Store
	Logger       logrus.FieldLogger
}

type Service struct {
	classifier   model.Classifier
	preprocessor *imaging.Preprocessor
	classes      []string
	validator    *imaging.Validator
	cache        cache.Cache
	history      history.Store
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewService(opts Options) *Service {
	s := &Service{
		classifier:   opts.Classifier,
		preprocessor: opts.Preprocessor,
		classes:      opts.Classes,
		validator:    opts.Validator,
		cache:        opts.Cache,
		history:      opts.History,
		log:          opts.Logger,
		now:          time.Now,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.validator == nil {
		s.validator = imaging.NewValidator(imaging.Limits{}, s.log)
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if len(s.classes) == 0 {
		s.classes = lesion.Classes()
	}
	return s
}

// ModelLoaded reports whether predictions can be served.
func (s *Service) ModelLoaded() bool {
	return s.classifier != nil && s.preprocessor != nil
}

// Classes returns the class names in prediction order.
func (s *Service) Classes() []string {
	out := make([]string, len(s.classes))
	copy(out, s.classes)
	return out
}

// Validator returns the image validator applied to every submission.
func (s *Service) Validator() *imaging.Validator {
	return s.validator
}

// DiagnoseBase64 decodes a base64 or data URL payload and diagnoses it.
func (s *Service) DiagnoseBase64(ctx context.Context, payload string) (*Diagnosis, error) {
	if !s.ModelLoaded() {
		return nil, apperr.ErrModelNotLoaded
	}
	raw, err := imaging.DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return s.Diagnose(ctx, raw)
}

// Diagnose validates, preprocesses and classifies raw image bytes.
func (s *Service) Diagnose(ctx context.Context, raw []byte) (*Diagnosis, error) {
	if !s.ModelLoaded() {
		return nil, apperr.ErrModelNotLoaded
	}

	info, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(raw)
	key := hex.EncodeToString(digest[:])
	if d, ok := s.cached(ctx, key); ok {
		return d, nil
	}

	img, _, err := imaging.Decode(raw)
	if err != nil {
		return nil, err
	}
	input, err := s.preprocessor.Tensor(img)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInput, "diagnosis.preprocess", "Failed to preprocess image", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInference, "diagnosis.classify", "request cancelled", err)
	}

	prediction, err := s.classifier.Classify(input)
	if err != nil {
		return nil, err
	}

	d := s.build(prediction)
	s.log.WithFields(logrus.Fields{
		"id":         d.ID,
		"diagnosis":  d.Diagnosis,
		"confidence": d.Confidence,
		"format":     info.Format,
		"width":      info.Width,
		"height":     info.Height,
	}).Info("prediction made")

	s.store(ctx, key, d)
	return d, nil
}

func (s *Service) build(p *model.Prediction) *Diagnosis {
	name := p.Class
	confidence := float64(p.Confidence()) * 100
	info := lesion.Lookup(name)

	predictions := make(map[string]float64, len(p.Probabilities))
	for i, prob := range p.Probabilities {
		if i < len(s.classes) {
			predictions[s.classes[i]] = round2(float64(prob) * 100)
		}
	}

	return &Diagnosis{
		ID:             uuid.NewString(),
		Diagnosis:      name,
		Confidence:     round2(confidence),
		Description:    info.Description,
		Symptoms:       info.Symptoms,
		RiskFactors:    info.RiskFactors,
		Treatment:      info.Treatment,
		Urgency:        info.Urgency,
		Recommendation: lesion.Recommendation(name, confidence, info),
		Predictions:    predictions,
		CreatedAt:      s.now().UTC(),
	}
}

func (s *Service) cached(ctx context.Context, key string) (*Diagnosis, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("prediction cache lookup failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var d Diagnosis
	if err := json.Unmarshal(raw, &d); err != nil {
		s.log.WithError(err).Warn("discarding unreadable cached prediction")
		return nil, false
	}
	d.Cached = true
	return &d, true
}

// store writes the diagnosis to the cache and history. Failures are logged
// and never fail the request.
func (s *Service) store(ctx context.Context, key string, d *Diagnosis) {
	if raw, err := json.Marshal(d); err == nil {
		if err := s.cache.Set(ctx, key, raw); err != nil {
			s.log.WithError(err).Warn("prediction cache write failed")
		}
	}

	if s.history == nil {
		return
	}
	err := s.history.Save(ctx, history.Record{
		ID:          d.ID,
		Diagnosis:   d.Diagnosis,
		Confidence:  d.Confidence,
		Urgency:     d.Urgency,
		ImageSHA256: key,
		CreatedAt:   d.CreatedAt,
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to record prediction history")
	}
}

// History exposes the history store, nil when history is disabled.
func (s *Service) History() history.Store {
	return s.history
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
