package cdp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browsion/browsion/internal/apperr"
)

// FrameInfo is one entry in the page's frame tree.
type FrameInfo struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	URL      string `json:"url"`
}

// GetFrames returns every frame (main frame plus iframes) currently
// attached to the page, flattened from Page.getFrameTree.
func (s *Session) GetFrames(ctx context.Context) ([]FrameInfo, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Page.getFrameTree", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "get frames", err)
	}
	var tree struct {
		FrameTree frameTreeNode `json:"frameTree"`
	}
	if err := json.Unmarshal(result, &tree); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "get frames", err)
	}
	var out []FrameInfo
	var walk func(n frameTreeNode, parent string)
	walk = func(n frameTreeNode, parent string) {
		out = append(out, FrameInfo{ID: n.Frame.ID, ParentID: parent, URL: n.Frame.URL})
		for _, child := range n.ChildFrames {
			walk(child, n.Frame.ID)
		}
	}
	walk(tree.FrameTree, "")
	return out, nil
}

type frameTreeNode struct {
	Frame struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"frame"`
	ChildFrames []frameTreeNode `json:"childFrames,omitempty"`
}

// SwitchFrame selects frameID as the current frame for subsequent
// selector-based operations. browsion tracks the selection but, unlike a
// full multi-world execution-context rewire, still evaluates selectors
// against the top document; SwitchFrame's primary use is get_frames-driven
// bookkeeping (validating the frame exists) ahead of a future per-frame
// evaluate.
func (s *Session) SwitchFrame(ctx context.Context, frameID string) error {
	frames, err := s.GetFrames(ctx)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if f.ID == frameID {
			s.frameMu.Lock()
			s.currentFrameID = frameID
			s.frameMu.Unlock()
			return nil
		}
	}
	return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("frame not found: %s", frameID), nil)
}

// MainFrame resets the current frame selection back to the top document.
func (s *Session) MainFrame(ctx context.Context) (string, error) {
	frames, err := s.GetFrames(ctx)
	if err != nil {
		return "", err
	}
	s.frameMu.Lock()
	s.currentFrameID = ""
	s.frameMu.Unlock()
	if len(frames) == 0 {
		return "", apperr.Wrap(apperr.ErrProtocol, "no frames", nil)
	}
	return frames[0].ID, nil
}

// CurrentFrame returns the frame id SwitchFrame last selected, or "" for
// the main document.
func (s *Session) CurrentFrame() string {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.currentFrameID
}
