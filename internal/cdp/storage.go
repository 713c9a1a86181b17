package cdp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browsion/browsion/internal/apperr"
)

func storageObject(kind string) (string, error) {
	switch kind {
	case "local":
		return "localStorage", nil
	case "session":
		return "sessionStorage", nil
	default:
		return "", apperr.Wrap(apperr.ErrValidation, fmt.Sprintf("unknown storage kind: %s", kind), nil)
	}
}

// GetStorage returns every key/value pair in the page's localStorage or
// sessionStorage, selected by kind ("local" or "session").
func (s *Session) GetStorage(ctx context.Context, kind string) (map[string]string, error) {
	obj, err := storageObject(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	expr := fmt.Sprintf(`(() => {
		const out = {};
		for (let i = 0; i < %s.length; i++) {
			const k = %s.key(i);
			out[k] = %s.getItem(k);
		}
		return out;
	})()`, obj, obj, obj)
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": expr, "returnByValue": true})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "get storage", err)
	}
	var resp struct {
		Result struct {
			Value map[string]string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "get storage", err)
	}
	return resp.Result.Value, nil
}

// SetStorageItem sets one key in localStorage or sessionStorage.
func (s *Session) SetStorageItem(ctx context.Context, kind, key, value string) error {
	obj, err := storageObject(kind)
	if err != nil {
		return err
	}
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	expr := fmt.Sprintf("%s.setItem(%q, %q)", obj, key, value)
	_, err = s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": expr})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "set storage item", err)
	}
	return nil
}

// RemoveStorageItem removes one key from localStorage or sessionStorage.
func (s *Session) RemoveStorageItem(ctx context.Context, kind, key string) error {
	obj, err := storageObject(kind)
	if err != nil {
		return err
	}
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	expr := fmt.Sprintf("%s.removeItem(%q)", obj, key)
	_, err = s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": expr})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "remove storage item", err)
	}
	return nil
}

// ClearStorage empties localStorage or sessionStorage entirely.
func (s *Session) ClearStorage(ctx context.Context, kind string) error {
	obj, err := storageObject(kind)
	if err != nil {
		return err
	}
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	_, err = s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": obj + ".clear()"})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "clear storage", err)
	}
	return nil
}
