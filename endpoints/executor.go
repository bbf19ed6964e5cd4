package endpoints

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-elearn-client/api"
	"github.com/jrsteele09/go-elearn-client/cache"
	"github.com/jrsteele09/go-elearn-client/client"
	apperrors "github.com/jrsteele09/go-elearn-client/internal/errors"
)

// Params fills {name} placeholders in a path template
type Params map[string]string

// Call is one invocation of an operation
type Call struct {
	Op     Operation
	Params Params
	Query  url.Values
	Body   any
}

// Executor interprets the operation table on top of the request client
type Executor struct {
	client   *client.Client
	cache    *cache.Cache
	table    map[Operation]Spec
	validate *validator.Validate
}

type ExecutorOption func(*Executor)

func WithCache(c *cache.Cache) ExecutorOption {
	return func(e *Executor) {
		e.cache = c
	}
}

// WithTable replaces the operation table, e.g. for a backend with different paths
func WithTable(table map[Operation]Spec) ExecutorOption {
	return func(e *Executor) {
		e.table = table
	}
}

func NewExecutor(c *client.Client, options ...ExecutorOption) *Executor {
	e := &Executor{
		client:   c,
		table:    Table,
		validate: newValidator(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.New()
	}
	return e
}

func (e *Executor) Client() *client.Client {
	return e.client
}

func (e *Executor) Cache() *cache.Cache {
	return e.cache
}

// Execute runs call, decoding the envelope data into out when out is non-nil.
// The returned error is nil only for a successful result.
func (e *Executor) Execute(ctx context.Context, call Call, out any) (api.Result, error) {
	spec, ok := e.table[call.Op]
	if !ok {
		return api.Result{}, apperrors.Wrapf(apperrors.ErrUnknownOperation, "%s", call.Op)
	}
	path, err := expandPath(spec.Path, call.Params)
	if err != nil {
		return api.Result{}, apperrors.Wrapf(err, "%s", call.Op)
	}
	if err := validateBody(e.validate, call.Body); err != nil {
		return api.Result{}, apperrors.Wrapf(err, "%s", call.Op)
	}

	key := e.cacheKey(spec.Method, path, call.Query)
	if spec.cacheable() {
		if data, ok := e.cache.Get(key); ok {
			result := api.Success(http.StatusOK, api.Envelope{Data: data})
			return result, result.Decode(out)
		}
	}

	result := e.client.Do(ctx, client.Request{
		Method: spec.Method,
		Path:   path,
		Query:  call.Query,
		Body:   call.Body,
	})

	switch {
	case result.Kind == api.KindSessionExpired:
		e.cache.Clear()
		return result, result.Err()
	case !result.OK():
		return result, result.Err()
	}

	if spec.cacheable() {
		e.cache.Put(key, result.Envelope.Data, string(spec.Tag))
	}
	if len(spec.Invalidates) > 0 {
		tags := make([]string, len(spec.Invalidates))
		for i, t := range spec.Invalidates {
			tags[i] = string(t)
		}
		e.cache.Invalidate(tags...)
	}
	return result, result.Decode(out)
}

// cacheKey separates entries per session mode so admin and user views never mix
func (e *Executor) cacheKey(method, path string, query url.Values) string {
	key := string(e.client.Store().Mode()) + " " + method + " " + path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	return key
}

func expandPath(template string, params Params) (string, error) {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		name := rest[open+1 : open+end]
		value := params[name]
		if value == "" {
			return "", apperrors.Wrapf(apperrors.ErrMissingParam, "%s", name)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}
}
