package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kataras/figma-variables/pkg/exporter"
	"github.com/kataras/figma-variables/pkg/store"
	"github.com/kataras/figma-variables/pkg/variables"
)

func themeSnapshot() *store.Snapshot {
	return store.New(
		[]variables.Collection{{
			ID:          "c1",
			Name:        "Theme",
			Modes:       []variables.Mode{{ID: "m1", Name: "Light"}, {ID: "m2", Name: "Dark"}},
			VariableIDs: []string{"v1", "v2"},
		}},
		[]*variables.Variable{
			{ID: "v1", Name: "color/bg", ResolvedType: variables.TypeColor, ValuesByMode: map[string]variables.Value{
				"m1": variables.Color{R: 1, G: 1, B: 1, A: 1},
				"m2": variables.Color{A: 1},
			}},
			{ID: "v2", Name: "gap", ResolvedType: variables.TypeFloat, ValuesByMode: map[string]variables.Value{
				"m1": variables.Float(4),
				"m2": variables.Float(6),
			}},
		},
	)
}

type recorder struct {
	messages []Message
}

func (r *recorder) PostMessage(_ context.Context, msg Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func TestOnActivate(t *testing.T) {
	t.Run("collections found", func(t *testing.T) {
		rec := &recorder{}
		require.NoError(t, New(store.Static(themeSnapshot()), rec, nil).OnActivate(context.Background()))

		require.Len(t, rec.messages, 1)
		assert.Equal(t, TypeVariableCollectionsFound, rec.messages[0].Type)
		assert.Equal(t, []exporter.CollectionRef{{ID: "c1", Name: "Theme"}}, rec.messages[0].Data)
	})

	t.Run("no collections", func(t *testing.T) {
		rec := &recorder{}
		require.NoError(t, New(store.Static(store.New(nil, nil)), rec, nil).OnActivate(context.Background()))

		require.Len(t, rec.messages, 1)
		assert.Equal(t, Message{Type: TypeNoCollectionFound}, rec.messages[0])
	})

	t.Run("open failure", func(t *testing.T) {
		boom := errors.New("offline")
		open := func(context.Context) (exporter.Store, error) { return nil, boom }

		rec := &recorder{}
		err := New(open, rec, nil).OnActivate(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, rec.messages)
	})
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		wantPosts int
		wantErr   bool
	}{
		{name: "export request", message: `{"type":"export-selected-collections","selectedCollections":["c1"]}`, wantPosts: 1},
		{name: "empty selection", message: `{"type":"export-selected-collections","selectedCollections":[]}`, wantPosts: 0},
		{name: "missing selection", message: `{"type":"export-selected-collections"}`, wantPosts: 0},
		{name: "other type", message: `{"type":"resize","selectedCollections":["c1"]}`, wantPosts: 0},
		{name: "malformed", message: `{"type":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			err := New(store.Static(themeSnapshot()), rec, zap.NewNop().Sugar()).HandleMessage(context.Background(), []byte(tt.message))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rec.messages, tt.wantPosts)
		})
	}
}

func TestOnExportRequested(t *testing.T) {
	opens := 0
	open := func(ctx context.Context) (exporter.Store, error) {
		opens++
		return themeSnapshot(), nil
	}

	rec := &recorder{}
	p := New(open, rec, nil)
	require.NoError(t, p.OnExportRequested(context.Background(), []string{"c1"}))
	require.NoError(t, p.OnExportRequested(context.Background(), []string{"unknown"}))

	assert.Equal(t, 2, opens, "every request opens a fresh snapshot")
	require.Len(t, rec.messages, 2)

	assert.Equal(t, Message{Type: TypeCollectionsReady, Data: []exporter.Bundle{
		{Name: "Theme-Light", Variables: []string{`"color/bg" : "#ffffff"`, `"gap" : "4"`}},
		{Name: "Theme-Dark", Variables: []string{`"color/bg" : "#000000"`, `"gap" : "6"`}},
	}}, rec.messages[0])

	assert.Equal(t, Message{Type: TypeCollectionsReady, Data: []exporter.Bundle{}}, rec.messages[1])
}

func TestMessageJSON(t *testing.T) {
	b, err := json.Marshal(Message{Type: TypeNoCollectionFound})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"noCollectionFound","data":null}`, string(b))

	b, err = json.Marshal(Message{Type: TypeCollectionsReady, Data: []exporter.Bundle{{Name: "A-B", Variables: []string{`"x" : "1"`}}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"collectionsReady","data":[{"name":"A-B","variables":["\"x\" : \"1\""]}]}`, string(b))
}

func TestServeStream(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		`{"type":"export-selected-collections","selectedCollections":["c1"]}`,
		``,
		`not json`,
		`{"type":"export-selected-collections","selectedCollections":[]}`,
		`{"type":"export-selected-collections","selectedCollections":["c1"]}`,
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, ServeStream(context.Background(), store.Static(themeSnapshot()), in, &out, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var types []string
	for _, line := range lines {
		var msg struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &msg))
		types = append(types, msg.Type)
	}
	assert.Equal(t, []string{TypeVariableCollectionsFound, TypeCollectionsReady, TypeCollectionsReady}, types)
	assert.Equal(t, lines[1], lines[2], "same request yields identical output")
}

func TestServeStreamEndsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- ServeStream(ctx, store.Static(themeSnapshot()), pr, &out, nil)
	}()

	// One request proves the session is live before cancelling.
	_, err := pw.Write([]byte(`{"type":"export-selected-collections","selectedCollections":["c1"]}` + "\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("ServeStream did not return after cancel while stdin stayed open")
	}
}

func TestWebSocketSession(t *testing.T) {
	srv := httptest.NewServer(NewServer(store.Static(themeSnapshot()), zap.NewNop().Sugar(), nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var found struct {
		Type string                   `json:"type"`
		Data []exporter.CollectionRef `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&found))
	assert.Equal(t, TypeVariableCollectionsFound, found.Type)
	assert.Equal(t, []exporter.CollectionRef{{ID: "c1", Name: "Theme"}}, found.Data)

	require.NoError(t, conn.WriteJSON(Request{Type: TypeExportSelectedCollections, SelectedCollections: []string{"c1"}}))

	var ready struct {
		Type string            `json:"type"`
		Data []exporter.Bundle `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, TypeCollectionsReady, ready.Type)
	require.Len(t, ready.Data, 2)
	assert.Equal(t, "Theme-Dark", ready.Data[1].Name)
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	srv := httptest.NewServer(NewServer(store.Static(themeSnapshot()), nil, []string{"null"}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
