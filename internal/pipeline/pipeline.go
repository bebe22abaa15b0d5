package pipeline

import (
	"context"
	"fmt"
	"gochef/internal/model"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the lookup side of the local recipe database
type Store interface {
	GetRecipe(ctx context.Context, id int64) (*model.Recipe, error)
	GetServer(ctx context.Context, id int64) (*model.Server, error)
}

// Poster delivers a built request and returns the server's value
type Poster interface {
	Post(ctx context.Context, uri, body string) (string, error)
}

// Options selects what a single run uses
type Options struct {
	RecipeID int64
	ServerID int64
	Store    Store
	Client   Poster
	Logger   *zap.Logger
}

// ------------------- Pipeline Runner -------------------
// Run reads all of in, sends it through the selected recipe and writes the
// result followed by a newline to out. Nothing is written to out on failure.
func Run(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", uuid.New().String()))

	input, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Debug("read input", zap.Int("bytes", len(input)))

	recipe, err := opts.Store.GetRecipe(ctx, opts.RecipeID)
	if err != nil {
		return fmt.Errorf("lookup recipe: %w", err)
	}

	server, err := opts.Store.GetServer(ctx, opts.ServerID)
	if err != nil {
		return fmt.Errorf("lookup server: %w", err)
	}

	body, err := BuildRequest(input, recipe)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	logger.Info("posting request",
		zap.Int64("recipe_id", recipe.ID),
		zap.String("output_type", recipe.OutputType),
		zap.Int64("server_id", server.ID),
		zap.String("uri", server.URI),
	)

	value, err := opts.Client.Post(ctx, server.URI, body)
	if err != nil {
		return fmt.Errorf("post request: %w", err)
	}

	if _, err := fmt.Fprintln(out, value); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Debug("run complete", zap.Duration("duration", time.Since(start)))
	return nil
}
