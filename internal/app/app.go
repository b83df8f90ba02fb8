// Package app assembles the diagnosis service from configuration.
package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/dermascan-api/internal/cache"
	"github.com/Brownie44l1/dermascan-api/internal/config"
	"github.com/Brownie44l1/dermascan-api/internal/diagnosis"
	"github.com/Brownie44l1/dermascan-api/internal/history"
	"github.com/Brownie44l1/dermascan-api/internal/imaging"
	"github.com/Brownie44l1/dermascan-api/internal/lesion"
	"github.com/Brownie44l1/dermascan-api/internal/model"
)

type App struct {
	Service *diagnosis.Service
	Model   *model.Server
	Cache   cache.Cache
	History history.Store
}

// Build loads the model and connects optional storage. When requireModel is
// false a model that fails to load is logged and the service reports it as
// not loaded.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Logger, requireModel bool) (*App, error) {
	a := &App{}
	cacheCfg := cfg.Cache
	opts := diagnosis.Options{
		Validator: imaging.NewValidator(cfg.Images, log),
		Classes:   lesion.Classes(),
		Logger:    log,
	}

	log.WithField("path", cfg.Model.Path).Info("loading model")
	server, err := model.NewServer(model.Options{
		ModelPath:      cfg.Model.Path,
		MetadataPath:   cfg.Model.MetadataPath,
		SharedLibrary:  cfg.Model.SharedLibrary,
		IntraOpThreads: cfg.Model.IntraOpThreads,
	})
	switch {
	case err != nil && requireModel:
		return nil, err
	case err != nil:
		log.WithError(err).Error("model unavailable, predictions are disabled")
	default:
		pre, err := server.Metadata.Preprocessor(cfg.Model.ResizeFilter)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("invalid resize filter: %w", err)
		}
		fingerprint, err := modelFingerprint(cfg.Model.Path, cfg.Model.MetadataPath)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("failed to fingerprint model: %w", err)
		}
		cacheCfg.Prefix = cachePrefix(cacheCfg.Prefix, fingerprint)
		a.Model = server
		opts.Classifier = server
		opts.Preprocessor = pre
		opts.Classes = server.Metadata.Classes
		log.WithFields(logrus.Fields{
			"classes": server.Metadata.Classes,
			"input":   server.Metadata.InputShape,
			"layout":  server.Metadata.Layout,
		}).Info("model loaded")
	}

	a.Cache, err = cache.New(ctx, cacheCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to connect prediction cache: %w", err)
	}
	opts.Cache = a.Cache

	if cfg.History.Enabled {
		a.History, err = history.NewDatabase(ctx, cfg.History.Type, cfg.History.ConnectionString)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open prediction history: %w", err)
		}
		opts.History = a.History
		log.WithField("type", cfg.History.Type).Info("prediction history enabled")
	}

	a.Service = diagnosis.NewService(opts)
	return a, nil
}

// modelFingerprint digests the model artifact and its metadata so cached
// predictions are scoped to the model that produced them.
func modelFingerprint(paths ...string) (string, error) {
	h := sha256.New()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

func cachePrefix(base, fingerprint string) string {
	if base == "" {
		base = cache.DefaultPrefix
	}
	return base + fingerprint + ":"
}

func (a *App) Close() {
	if a.History != nil {
		_ = a.History.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.Model != nil {
		a.Model.Close()
	}
}
