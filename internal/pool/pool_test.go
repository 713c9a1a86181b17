package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// fakeCDPRequest mirrors the wire shape internal/cdp.Request uses.
type fakeCDPRequest struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type fakeCDPResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
}

// newFakeChromeServer starts an httptest server that serves Chrome's
// /json page list and speaks just enough CDP over a WebSocket upgrade to
// satisfy Pool.connectLocked: Target.setDiscoverTargets,
// Target.attachToTarget (returns a sessionId), and the Page/Runtime/DOM/
// Accessibility enables Session.Enable issues.
func newFakeChromeServer(t *testing.T) (*httptest.Server, int) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/devtools/page/PAGE1"

	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]string{
			{
				"id":                   "PAGE1",
				"type":                 "page",
				"title":                "fake page",
				"url":                  "about:blank",
				"webSocketDebuggerUrl": wsURL,
			},
		})
	})
	mux.HandleFunc("/devtools/page/PAGE1", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := context.Background()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var req fakeCDPRequest
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}
			resp := fakeCDPResponse{ID: req.ID, Result: json.RawMessage(`{}`)}
			if req.Method == "Target.attachToTarget" {
				resp.Result = json.RawMessage(`{"sessionId":"SESSION1"}`)
			}
			out, _ := json.Marshal(resp)
			conn.Write(ctx, websocket.MessageText, out)
		}
	})

	addr := strings.TrimPrefix(srv.URL, "http://")
	parts := strings.Split(addr, ":")
	var port int
	fmt.Sscanf(parts[1], "%d", &port)
	return srv, port
}

func TestPool_GetConnectsAndReuses(t *testing.T) {
	_, port := newFakeChromeServer(t)

	p := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sess, err := p.Get(ctx, "profile-1", port)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess == nil {
		t.Fatal("expected non-nil session")
	}
	if !p.Active("profile-1") {
		t.Error("expected profile-1 to be active after Get")
	}

	sess2, err := p.Get(ctx, "profile-1", port)
	if err != nil {
		t.Fatalf("Get (reuse): %v", err)
	}
	if sess2 != sess {
		t.Error("expected Get to reuse the pooled session on a second call")
	}

	p.Disconnect("profile-1")
	if p.Active("profile-1") {
		t.Error("expected profile-1 to be inactive after Disconnect")
	}
}

func TestPool_ActiveFalseForUnknownProfile(t *testing.T) {
	p := New()
	if p.Active("nope") {
		t.Error("expected Active to be false for a profile never Get'd")
	}
}
