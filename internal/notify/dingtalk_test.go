package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"cchook/internal/config"
)

func newTestDingTalk(t *testing.T, server *httptest.Server) *DingTalkNotifier {
	t.Helper()
	d, err := NewDingTalk(config.DingTalkSettings{AccessToken: "token", Secret: "secret"})
	if err != nil {
		t.Fatalf("NewDingTalk: %v", err)
	}
	if server != nil {
		d.endpoint = server.URL
		d.http = server.Client()
	}
	return d
}

func TestNewDingTalkRequiresCredentials(t *testing.T) {
	if _, err := NewDingTalk(config.DingTalkSettings{AccessToken: "t"}); err == nil {
		t.Fatalf("expected error without secret")
	}
	if _, err := NewDingTalk(config.DingTalkSettings{Secret: "s"}); err == nil {
		t.Fatalf("expected error without access token")
	}
}

func TestDingTalkSignature(t *testing.T) {
	d := newTestDingTalk(t, nil)
	ts := int64(1700000000000)

	// Independent reconstruction of the documented scheme.
	mac := hmac.New(sha256.New, []byte("secret"))
	fmt.Fprintf(mac, "%d\n%s", ts, "secret")
	want := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	if got := d.sign(ts); got != want {
		t.Fatalf("sign(%d) = %q, want %q", ts, got, want)
	}
	if d.sign(ts) != d.sign(ts) {
		t.Fatalf("signature must be deterministic for a fixed timestamp")
	}
	if d.sign(ts) == d.sign(ts+1) {
		t.Fatalf("signature must change with the timestamp")
	}
}

func TestDingTalkSendRequestShape(t *testing.T) {
	var gotQuery url.Values
	var gotBody dingTalkBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"errcode":0,"errmsg":"ok"}`)
	}))
	defer server.Close()

	d := newTestDingTalk(t, server)
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }

	out := d.SendWithAt(context.Background(), Payload{Title: "Build", Message: "done"}, AtOptions{
		IsAtAll: true,
		UserIDs: []string{"u1"},
	})
	if !out.Success {
		t.Fatalf("send failed: %s", out.Error)
	}

	if gotQuery.Get("access_token") != "token" {
		t.Fatalf("access_token missing from query: %v", gotQuery)
	}
	if gotQuery.Get("timestamp") != "1700000000000" {
		t.Fatalf("timestamp wrong: %v", gotQuery)
	}
	if gotQuery.Get("sign") == "" {
		t.Fatalf("sign missing from query: %v", gotQuery)
	}
	if gotBody.MsgType != "text" {
		t.Fatalf("msgtype = %q", gotBody.MsgType)
	}
	if gotBody.Text.Content != "Build: done" {
		t.Fatalf("content = %q", gotBody.Text.Content)
	}
	if !gotBody.At.IsAtAll || len(gotBody.At.AtUserIDs) != 1 {
		t.Fatalf("at options not carried: %+v", gotBody.At)
	}
	if gotBody.At.AtMobiles == nil {
		t.Fatalf("atMobiles must serialize as an empty array, not null")
	}
}

func TestDingTalkSendRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errcode":310000,"errmsg":"sign not match"}`)
	}))
	defer server.Close()

	d := newTestDingTalk(t, server)
	out := d.Send(context.Background(), Payload{Message: "hi"})
	if out.Success {
		t.Fatalf("expected failure for nonzero errcode")
	}
	if out.Error != "sign not match" {
		t.Fatalf("error = %q, want remote errmsg", out.Error)
	}
}

func TestDingTalkSendEmptyPayload(t *testing.T) {
	d := newTestDingTalk(t, nil)
	out := d.Send(context.Background(), Payload{})
	if out.Success {
		t.Fatalf("expected failure for empty payload")
	}
}
