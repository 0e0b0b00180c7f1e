package tweets

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Record is one authored post as stored in the export: {"tweet": {...}}.
type Record struct {
	Tweet Tweet `json:"tweet"`
}

// Tweet holds the fields of a post that the pipeline reads.
type Tweet struct {
	ID                  FlexString `json:"id"`
	IDStr               string     `json:"id_str,omitempty"`
	FullText            string     `json:"full_text"`
	CreatedAtRaw        string     `json:"created_at"`
	RetweetCount        Count      `json:"retweet_count,omitempty"`
	FavoriteCount       Count      `json:"favorite_count,omitempty"`
	InReplyToStatusID   FlexString `json:"in_reply_to_status_id,omitempty"`
	InReplyToUserID     FlexString `json:"in_reply_to_user_id,omitempty"`
	InReplyToScreenName string     `json:"in_reply_to_screen_name,omitempty"`
	Entities            *Entities  `json:"entities,omitempty"`

	ignored []string
}

// Entities lists the structured references extracted from the post text.
type Entities struct {
	Hashtags     []Hashtag     `json:"hashtags,omitempty"`
	URLs         []URL         `json:"urls,omitempty"`
	UserMentions []UserMention `json:"user_mentions,omitempty"`
}

// Hashtag is a #tag reference.
type Hashtag struct {
	Text string `json:"text"`
}

// URL is a shortened link and its expansion.
type URL struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url,omitempty"`
}

// UserMention is an @screen_name reference.
type UserMention struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name,omitempty"`
}

// Count is an engagement counter. The export writes counters as JSON strings
// ("12"); older exports and hand-edited files use plain numbers. Values that
// are not an integer decode to zero instead of failing the record.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	*c, _ = parseCount(b)
	return nil
}

// FlexString is an identifier that may be encoded as a string or a number.
// Any other JSON value decodes to "".
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	*f, _ = parseFlexString(b)
	return nil
}

// parseCount reports false when b holds a value that is not an integral
// number, such as "1.2K", 3.5 or true. null and "" are zero and valid.
func parseCount(b []byte) (Count, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, true
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, true
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Count(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return Count(f), true
}

func parseFlexString(b []byte) (FlexString, bool) {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return "", true
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return FlexString(s), true
	}
	// keep the literal digits so large ids survive without float rounding
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return "", false
	}
	return FlexString(b), true
}

// UnmarshalJSON decodes the post and remembers which loosely typed fields
// held values that had to be replaced by their zero value.
func (t *Tweet) UnmarshalJSON(b []byte) error {
	type plain Tweet
	if err := json.Unmarshal(b, (*plain)(t)); err != nil {
		return err
	}

	var raw struct {
		ID                json.RawMessage `json:"id"`
		RetweetCount      json.RawMessage `json:"retweet_count"`
		FavoriteCount     json.RawMessage `json:"favorite_count"`
		InReplyToStatusID json.RawMessage `json:"in_reply_to_status_id"`
		InReplyToUserID   json.RawMessage `json:"in_reply_to_user_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	t.ignored = nil
	for _, f := range []struct {
		name  string
		value json.RawMessage
		count bool
	}{
		{"id", raw.ID, false},
		{"retweet_count", raw.RetweetCount, true},
		{"favorite_count", raw.FavoriteCount, true},
		{"in_reply_to_status_id", raw.InReplyToStatusID, false},
		{"in_reply_to_user_id", raw.InReplyToUserID, false},
	} {
		var ok bool
		if f.count {
			_, ok = parseCount(f.value)
		} else {
			_, ok = parseFlexString(f.value)
		}
		if !ok {
			t.ignored = append(t.ignored, f.name)
		}
	}
	return nil
}

// IgnoredFields lists the fields whose values could not be read and were
// zeroed while decoding.
func (t Tweet) IgnoredFields() []string {
	return t.ignored
}

// UnmarshalJSON accepts both the wrapped {"tweet": {...}} form and a bare
// legacy post object.
func (r *Record) UnmarshalJSON(b []byte) error {
	var wrapped struct {
		Tweet *Tweet `json:"tweet"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	if wrapped.Tweet != nil {
		r.Tweet = *wrapped.Tweet
		return nil
	}

	var bare Tweet
	if err := json.Unmarshal(b, &bare); err != nil {
		return err
	}
	r.Tweet = bare
	return nil
}

// ID returns the post identifier, preferring id_str.
func (r Record) ID() string {
	if r.Tweet.IDStr != "" {
		return r.Tweet.IDStr
	}
	return string(r.Tweet.ID)
}

// CreatedAt returns the raw created_at string.
func (r Record) CreatedAt() string {
	return r.Tweet.CreatedAtRaw
}

// IsReply reports whether the post answers another post or user.
func (r Record) IsReply() bool {
	return r.Tweet.InReplyToStatusID != "" || r.Tweet.InReplyToUserID != "" || r.Tweet.InReplyToScreenName != ""
}
