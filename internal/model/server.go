package model

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Brownie44l1/dermascan-api/internal/apperr"
)

// Classifier runs a prepared input tensor through a network.
type Classifier interface {
	Classify(input []float32) (*Prediction, error)
}

// Options locate the model artifact and the onnxruntime shared library.
type Options struct {
	ModelPath      string
	MetadataPath   string
	SharedLibrary  string
	IntraOpThreads int
}

// Server owns one onnxruntime session. The session and its bound tensors are
// shared, so Classify serializes forward passes.
type Server struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func NewServer(opts Options) (*Server, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, apperr.Wrap(apperr.KindModel, "model.load", "Model file not found: "+opts.ModelPath, err)
	}

	metadata, err := LoadMetadata(opts.MetadataPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindModel, "model.metadata", "failed to load model metadata", err)
	}

	if opts.SharedLibrary != "" {
		ort.SetSharedLibraryPath(opts.SharedLibrary)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, apperr.Wrap(apperr.KindModel, "model.env", "failed to initialize ONNX environment", err)
		}
	}

	s := &Server{Metadata: metadata}
	if err := s.open(opts); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) open(opts Options) error {
	var err error
	s.inputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(s.Metadata.InputShape...))
	if err != nil {
		return apperr.Wrap(apperr.KindModel, "model.tensor", "failed to create input tensor", err)
	}

	s.outputTensor, err = ort.NewEmptyTensor[float32](ort.NewShape(s.Metadata.OutputShape...))
	if err != nil {
		return apperr.Wrap(apperr.KindModel, "model.tensor", "failed to create output tensor", err)
	}

	var sessionOpts *ort.SessionOptions
	if opts.IntraOpThreads > 0 {
		sessionOpts, err = ort.NewSessionOptions()
		if err != nil {
			return apperr.Wrap(apperr.KindModel, "model.session", "failed to create session options", err)
		}
		defer sessionOpts.Destroy()
		if err := sessionOpts.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return apperr.Wrap(apperr.KindModel, "model.session", "failed to set intra-op threads", err)
		}
	}

	s.session, err = ort.NewAdvancedSession(opts.ModelPath,
		[]string{s.Metadata.InputName}, []string{s.Metadata.OutputName},
		[]ort.ArbitraryTensor{s.inputTensor}, []ort.ArbitraryTensor{s.outputTensor},
		sessionOpts)
	if err != nil {
		return apperr.Wrap(apperr.KindModel, "model.session", "failed to create ONNX session", err)
	}
	return nil
}

func (s *Server) Classify(input []float32) (*Prediction, error) {
	if want := s.Metadata.InputSize(); len(input) != want {
		return nil, apperr.New(apperr.KindInput, "model.classify",
			fmt.Sprintf("Expected %d values, got %d", want, len(input)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.inputTensor.GetData(), input)
	if err := s.session.Run(); err != nil {
		return nil, apperr.Wrap(apperr.KindInference, "model.classify", "inference failed", err)
	}

	output := s.outputTensor.GetData()
	scores := make([]float32, len(s.Metadata.Classes))
	copy(scores, output)
	return PredictionFromScores(scores, s.Metadata.Classes, s.Metadata.ApplySoftmax)
}

// PredictionFromScores picks the most likely class from the network output.
func PredictionFromScores(scores []float32, classes []string, applySoftmax bool) (*Prediction, error) {
	if len(scores) == 0 || len(scores) != len(classes) {
		return nil, apperr.New(apperr.KindInference, "model.output",
			fmt.Sprintf("model produced %d scores for %d classes", len(scores), len(classes)))
	}
	probs := scores
	if applySoftmax {
		probs = Softmax(scores)
	}
	idx := Argmax(probs)
	return &Prediction{
		Index:         idx,
		Class:         classes[idx],
		Probabilities: probs,
	}, nil
}

func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
		s.inputTensor = nil
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
		s.outputTensor = nil
	}
	ort.DestroyEnvironment()
}
