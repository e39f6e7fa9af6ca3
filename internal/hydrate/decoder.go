package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the request a payload came from.
type Context struct {
	Endpoint string
	Key      string
}

func (c Context) label() string {
	if c.Key == "" {
		return c.Endpoint
	}
	return c.Endpoint + " " + c.Key
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated value after decoding.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON decoding when provided.
type CustomDecoder[T any] func(Context, map[string]any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts REST payloads into strongly typed values.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
	custom       CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithCustomDecoder replaces the default JSON decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T applying configured hooks.
func (d *Decoder[T]) Decode(ctx Context, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil for %q", ctx.label())
	}

	current, err := clonePayload(payload)
	if err != nil {
		return zero, fmt.Errorf("hydrate: clone payload for %q: %w", ctx.label(), err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.custom != nil {
		result, err = d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for %q failed: %w", ctx.label(), err)
		}
	} else {
		buffer, err := json.Marshal(current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: marshal payload for %q: %w", ctx.label(), err)
		}
		if err := d.decodeInto(buffer, &result); err != nil {
			return zero, fmt.Errorf("hydrate: decode %q: %w", ctx.label(), err)
		}
	}

	return d.finish(ctx, result)
}

// DecodeJSON decodes a raw body. Objects go through Decode and its hooks;
// any other JSON value (lists in particular) is decoded directly and only
// post-hooks apply.
func (d *Decoder[T]) DecodeJSON(ctx Context, raw []byte) (T, error) {
	var zero T
	body := bytes.TrimSpace(raw)
	if len(body) == 0 {
		return zero, fmt.Errorf("hydrate: empty body for %q", ctx.label())
	}
	if body[0] == '{' {
		var payload map[string]any
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			return zero, fmt.Errorf("hydrate: parse %q: %w", ctx.label(), err)
		}
		return d.Decode(ctx, payload)
	}

	var result T
	if err := d.decodeInto(body, &result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %q: %w", ctx.label(), err)
	}
	return d.finish(ctx, result)
}

func (d *Decoder[T]) decodeInto(body []byte, out *T) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	return decoder.Decode(out)
}

func (d *Decoder[T]) finish(ctx Context, result T) (T, error) {
	var zero T
	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.label(), err)
		}
	}
	return result, nil
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(buffer))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
