package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cchook/internal/config"
)

const defaultDingTalkEndpoint = "https://oapi.dingtalk.com/robot/send"

// DingTalkNotifier delivers through a DingTalk robot webhook with the
// signed-request scheme ("加签" security setting).
type DingTalkNotifier struct {
	accessToken string
	secret      string

	endpoint string
	http     *http.Client

	// now is split out so signature tests can pin the timestamp.
	now func() time.Time
}

// NewDingTalk fails fast when either secret is missing: a half-configured
// webhook channel should surface at construction, not as a remote 4xx.
func NewDingTalk(set config.DingTalkSettings) (*DingTalkNotifier, error) {
	if set.AccessToken == "" || set.Secret == "" {
		return nil, errors.New("dingtalk configuration incomplete: accessToken and secret required")
	}
	return &DingTalkNotifier{
		accessToken: set.AccessToken,
		secret:      set.Secret,
		endpoint:    defaultDingTalkEndpoint,
		http:        &http.Client{Timeout: 8 * time.Second},
		now:         time.Now,
	}, nil
}

func (d *DingTalkNotifier) Name() config.ChannelType { return config.ChannelDingTalk }

// AtOptions address specific users in the robot's group. They are supplied
// per send (CLI flags), never persisted with the channel settings.
type AtOptions struct {
	UserIDs []string
	Mobiles []string
	IsAtAll bool
}

// sign implements DingTalk's exact construction: the HMAC-SHA256 of
// "{timestamp}\n{secret}" keyed by the secret itself, base64'd then
// URL-encoded. The remote rejects anything else bit-for-bit.
func (d *DingTalkNotifier) sign(timestamp int64) string {
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, d.secret)
	mac := hmac.New(sha256.New, []byte(d.secret))
	mac.Write([]byte(stringToSign))
	return url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

type dingTalkBody struct {
	MsgType string       `json:"msgtype"`
	Text    dingTalkText `json:"text"`
	At      dingTalkAt   `json:"at"`
}

type dingTalkText struct {
	Content string `json:"content"`
}

type dingTalkAt struct {
	IsAtAll   bool     `json:"isAtAll"`
	AtUserIDs []string `json:"atUserIds"`
	AtMobiles []string `json:"atMobiles"`
}

type dingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (d *DingTalkNotifier) Send(ctx context.Context, p Payload) DeliveryOutcome {
	return d.SendWithAt(ctx, p, AtOptions{})
}

func (d *DingTalkNotifier) SendWithAt(ctx context.Context, p Payload, at AtOptions) DeliveryOutcome {
	if p.IsZero() {
		return failMsg("notification requires a message or a title")
	}

	timestamp := d.now().UnixMilli()

	q := url.Values{}
	q.Set("access_token", d.accessToken)
	q.Set("timestamp", fmt.Sprintf("%d", timestamp))
	// sign() output is already URL-encoded; adding it via url.Values would
	// double-encode, so the query string is assembled by hand.
	endpoint := fmt.Sprintf("%s?%s&sign=%s", d.endpoint, q.Encode(), d.sign(timestamp))

	body := dingTalkBody{
		MsgType: "text",
		Text:    dingTalkText{Content: p.Flatten()},
		At: dingTalkAt{
			IsAtAll:   at.IsAtAll,
			AtUserIDs: emptyIfNil(at.UserIDs),
			AtMobiles: emptyIfNil(at.Mobiles),
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fail(fmt.Errorf("dingtalk request failed: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("dingtalk request failed: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return fail(fmt.Errorf("dingtalk request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fail(fmt.Errorf("dingtalk request failed: %w", err))
	}

	var r dingTalkResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return fail(fmt.Errorf("failed to parse dingtalk response: %w", err))
	}
	if r.ErrCode != 0 {
		if r.ErrMsg != "" {
			return failMsg(r.ErrMsg)
		}
		return failMsg("dingtalk notification failed")
	}
	return ok()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
