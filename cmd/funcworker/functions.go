package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/azfunc/worker-go/bindings"
	"github.com/azfunc/worker-go/worker"
)

// manifest lists the functions this binary serves. A build step would
// normally generate this table; keeping it an explicit value means the
// engine never scans ambient state for handlers.
func manifest() []worker.Registration {
	return []worker.Registration{
		{Name: "Echo", Handler: worker.HandlerFunc(echo)},
		{Name: "Uppercase", Handler: worker.HandlerFunc(uppercase)},
		{Name: "Greet", Handler: worker.HandlerFunc(greet)},
		{Name: "Sleep", Handler: worker.HandlerFunc(sleep)},
	}
}

// echo answers an HTTP trigger with the request body it received.
func echo(ctx context.Context, invocation *worker.Invocation) (*worker.Result, error) {
	req, ok := invocation.Inputs["req"].(*bindings.HTTP)
	if !ok {
		return nil, errors.New(`echo expects an HTTP trigger bound to "req"`)
	}
	worker.Logger(ctx).Info("echoing request",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
	)
	contentType := req.Headers["content-type"]
	if contentType == "" {
		contentType = "text/plain"
	}
	return &worker.Result{
		Return: &bindings.HTTP{
			StatusCode: "200",
			Headers:    map[string]string{"content-type": contentType},
			Body:       req.Body,
		},
	}, nil
}

// uppercase maps a string input binding to a string output binding.
func uppercase(ctx context.Context, invocation *worker.Invocation) (*worker.Result, error) {
	name, ok := invocation.Inputs["name"].(bindings.String)
	if !ok {
		return nil, errors.New(`uppercase expects a string input bound to "name"`)
	}
	return &worker.Result{
		Outputs: map[string]bindings.Value{
			"result": bindings.String(strings.ToUpper(string(name))),
		},
	}, nil
}

// greet consumes a JSON payload of the form {"name": "..."}.
func greet(ctx context.Context, invocation *worker.Invocation) (*worker.Result, error) {
	payload, ok := invocation.Inputs["payload"].(bindings.JSON)
	if !ok {
		return nil, errors.New(`greet expects a JSON input bound to "payload"`)
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := payload.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &worker.Result{
		Return: bindings.String("Hello, " + body.Name),
	}, nil
}

// sleep waits for the requested duration, stopping early when the invocation
// is cancelled.
func sleep(ctx context.Context, invocation *worker.Invocation) (*worker.Result, error) {
	duration := 10 * time.Second
	if v, ok := invocation.Inputs["duration"].(bindings.String); ok {
		parsed, err := time.ParseDuration(string(v))
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		duration = parsed
	}
	logger := worker.Logger(ctx)
	logger.Info("sleeping", zap.Duration("duration", duration))
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return &worker.Result{Return: bindings.String("slept " + duration.String())}, nil
	case <-ctx.Done():
		logger.Warn("sleep cancelled")
		return nil, ctx.Err()
	}
}
