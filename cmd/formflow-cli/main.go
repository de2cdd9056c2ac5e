package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/client"
	"github.com/goliatone/go-formflow/pkg/tui"
)

func main() {
	definitionPath := flag.String("definition", "", "form definition document (JSON or YAML)")
	openapiPath := flag.String("openapi", "", "OpenAPI document to derive a field set from")
	operationID := flag.String("operation", "", "operation ID when deriving from OpenAPI")
	submitURL := flag.String("submit-url", "", "submission endpoint (or FORMFLOW_SUBMIT_URL)")
	uploadURL := flag.String("upload-url", "", "file upload endpoint (or FORMFLOW_UPLOAD_URL)")
	dryRun := flag.Bool("dry-run", false, "print the payload instead of posting it")
	verbose := flag.Bool("verbose", false, "log client activity to stderr")
	flag.Parse()

	// Missing .env files are fine; explicit endpoints win over the file.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(*verbose),
	}))

	ctx := context.Background()

	def, err := loadDefinition(ctx, *definitionPath, *openapiPath, *operationID)
	if err != nil {
		log.Fatalf("load form: %v", err)
	}

	options, err := backendOptions(*dryRun, envOr(*submitURL, "FORMFLOW_SUBMIT_URL"), envOr(*uploadURL, "FORMFLOW_UPLOAD_URL"), logger)
	if err != nil {
		log.Fatalf("configure backends: %v", err)
	}

	session := formflow.NewSession(def, options...)
	runner := tui.NewRunner(session, tui.WithLogger(logger))

	if err := runner.Run(ctx); err != nil {
		session.Teardown(ctx)
		log.Fatalf("run form: %v", err)
	}
}

func loadDefinition(ctx context.Context, definitionPath, openapiPath, operationID string) (formflow.FormDefinition, error) {
	switch {
	case definitionPath != "":
		return formflow.ParseFile(definitionPath)
	case openapiPath != "":
		raw, err := os.ReadFile(openapiPath)
		if err != nil {
			return formflow.FormDefinition{}, err
		}
		return formflow.FromOperation(ctx, raw, operationID)
	default:
		return formflow.FormDefinition{}, fmt.Errorf("either -definition or -openapi is required")
	}
}

func backendOptions(dryRun bool, submitURL, uploadURL string, logger *slog.Logger) ([]formflow.SessionOption, error) {
	if dryRun {
		return []formflow.SessionOption{formflow.WithSubmitter(printSubmitter{})}, nil
	}

	if strings.TrimSpace(submitURL) == "" {
		return nil, fmt.Errorf("a submission endpoint is required (use -submit-url, FORMFLOW_SUBMIT_URL, or -dry-run)")
	}

	submissions, err := client.NewSubmissionClient(submitURL, client.WithSubmissionLogger(logger))
	if err != nil {
		return nil, err
	}
	options := []formflow.SessionOption{formflow.WithSubmitter(submissions)}

	if strings.TrimSpace(uploadURL) != "" {
		uploads, err := client.NewUploadClient(uploadURL, client.WithUploadLogger(logger))
		if err != nil {
			return nil, err
		}
		options = append(options, formflow.WithUploader(uploads))
	}
	return options, nil
}

// printSubmitter writes the payload to stdout instead of posting it.
type printSubmitter struct{}

func (printSubmitter) Submit(_ context.Context, formID string, answers map[string]any) error {
	payload, err := json.MarshalIndent(map[string]any{"formId": formID, "answers": answers}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}

func envOr(explicit, envKey string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return os.Getenv(envKey)
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
