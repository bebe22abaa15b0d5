package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"gochef/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoRow = errors.New("no row")

type fakeStore struct {
	recipes map[int64]*model.Recipe
	servers map[int64]*model.Server
}

func (f *fakeStore) GetRecipe(_ context.Context, id int64) (*model.Recipe, error) {
	if r, ok := f.recipes[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: recipe %d", errNoRow, id)
}

func (f *fakeStore) GetServer(_ context.Context, id int64) (*model.Server, error) {
	if s, ok := f.servers[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: server %d", errNoRow, id)
}

type fakePoster struct {
	value string
	err   error

	calls int
	uri   string
	body  string
}

func (f *fakePoster) Post(_ context.Context, uri, body string) (string, error) {
	f.calls++
	f.uri = uri
	f.body = body
	return f.value, f.err
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		recipes: map[int64]*model.Recipe{1: base64Recipe},
		servers: map[int64]*model.Server{1: {ID: 1, Name: "local", URI: "http://localhost:3000/bake"}},
	}
}

func TestRunWritesValue(t *testing.T) {
	poster := &fakePoster{value: "aGVsbG8="}
	var out bytes.Buffer

	err := Run(context.Background(), Options{RecipeID: 1, ServerID: 1, Store: newFakeStore(), Client: poster},
		strings.NewReader("hello\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, "aGVsbG8=\n", out.String())
	assert.Equal(t, 1, poster.calls)
	assert.Equal(t, "http://localhost:3000/bake", poster.uri)
	assert.Equal(t,
		`{"input":"hello","recipe":[{"op":"To Base64","args":["A-Za-z0-9+/="]}],"outputType":"string"}`,
		poster.body)
}

func TestRunStepFailures(t *testing.T) {
	postErr := errors.New("boom")

	tests := []struct {
		name     string
		opts     Options
		input    string
		wantStep string
		wantErr  error
		posted   bool
	}{
		{
			name:     "missing recipe",
			opts:     Options{RecipeID: 999, ServerID: 1},
			input:    "hello",
			wantStep: "lookup recipe",
			wantErr:  errNoRow,
		},
		{
			name:     "missing server",
			opts:     Options{RecipeID: 1, ServerID: 7},
			input:    "hello",
			wantStep: "lookup server",
			wantErr:  errNoRow,
		},
		{
			name:     "invalid input",
			opts:     Options{RecipeID: 1, ServerID: 1},
			input:    "bad \xff bytes",
			wantStep: "build request",
			wantErr:  ErrInvalidInput,
		},
		{
			name:     "post failure",
			opts:     Options{RecipeID: 1, ServerID: 1},
			input:    "hello",
			wantStep: "post request",
			wantErr:  postErr,
			posted:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := &fakePoster{value: "unused", err: nil}
			if tt.posted {
				poster.err = postErr
			}
			opts := tt.opts
			opts.Store = newFakeStore()
			opts.Client = poster

			var out bytes.Buffer
			err := Run(context.Background(), opts, strings.NewReader(tt.input), &out)

			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, strings.HasPrefix(err.Error(), tt.wantStep+":"), "error %q should name step %q", err, tt.wantStep)
			assert.Empty(t, out.String())
			if tt.posted {
				assert.Equal(t, 1, poster.calls)
			} else {
				assert.Zero(t, poster.calls)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("stdin closed") }

func TestRunReadFailure(t *testing.T) {
	poster := &fakePoster{}
	var out bytes.Buffer

	err := Run(context.Background(), Options{RecipeID: 1, ServerID: 1, Store: newFakeStore(), Client: poster},
		failingReader{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read input")
	assert.Empty(t, out.String())
	assert.Zero(t, poster.calls)
}
