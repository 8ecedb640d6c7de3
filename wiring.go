package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	intconfig "tripform/internal/config"
	"tripform/internal/repositories"
	"tripform/internal/services"
)

type envKey struct{}

func withEnv(ctx context.Context, env intconfig.Env) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, envKey{}, env)
}

func envFrom(ctx context.Context) intconfig.Env {
	env, _ := ctx.Value(envKey{}).(intconfig.Env)
	return env
}

// openStore builds the counter store selected by SERIAL_STORE.
func openStore(ctx context.Context, env intconfig.Env) (repositories.CounterStore, error) {
	switch env.SerialStore {
	case "badger":
		return repositories.OpenBadgerCounterStore(env.BadgerDir)
	case "mysql":
		db, err := intconfig.OpenDB(ctx, env.MySQLDSN)
		if err != nil {
			return nil, err
		}
		store := repositories.NewMySQLCounterStore(db, "")
		if err := store.Init(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case "file", "":
		return repositories.NewFileCounterStore(env.SerialFile), nil
	default:
		return nil, fmt.Errorf("unknown serial_store %q", env.SerialStore)
	}
}

func newUploader(ctx context.Context, env intconfig.Env) (services.Uploader, error) {
	switch env.UploadBackend {
	case "s3":
		return services.NewS3Uploader(ctx, env.S3Bucket)
	default:
		return services.RelayUploader{
			BaseURL: env.RelayBaseURL,
			Client:  &http.Client{Timeout: 90 * time.Second},
		}, nil
	}
}

func footerLines(env intconfig.Env) []string {
	if strings.TrimSpace(env.FooterLine) == "" {
		return nil
	}
	return []string{env.FooterLine}
}

func newSubmissionService(env intconfig.Env, store repositories.CounterStore, up services.Uploader, opener services.LinkOpener) services.SubmissionService {
	return services.SubmissionService{
		Serials:        services.SerialService{Store: store},
		Renderer:       services.DocsService{FooterLines: footerLines(env)},
		Uploader:       up,
		Opener:         opener,
		FolderName:     env.UploadFolder,
		WhatsAppNumber: env.WhatsAppNumber,
	}
}
