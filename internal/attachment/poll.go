// ABOUTME: Poll attachment with tri-state flags
// ABOUTME: Filled when the payload carries the answer list

package attachment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Flag is a truthy API field sent either as 0/1 or as a boolean.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false", "0", `""`:
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flag: unexpected value %s", data)
	}
	*f = n != 0
	return nil
}

// PollAnswer is one answer option.
type PollAnswer struct {
	ID    uint64  `json:"id"`
	Text  string  `json:"text"`
	Votes int     `json:"votes"`
	Rate  float64 `json:"rate"`
}

// PollPayload is the poll object as returned by the API.
type PollPayload struct {
	ID        uint64 `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	AccessKey string `json:"access_key,omitempty"`

	Anonymous Flag `json:"anonymous,omitempty"`
	Multiple  Flag `json:"multiple,omitempty"`
	Closed    Flag `json:"closed,omitempty"`
	IsBoard   Flag `json:"is_board,omitempty"`
	CanEdit   Flag `json:"can_edit,omitempty"`
	CanVote   Flag `json:"can_vote,omitempty"`
	CanReport Flag `json:"can_report,omitempty"`
	CanShare  Flag `json:"can_share,omitempty"`

	AuthorID   *int64          `json:"author_id,omitempty"`
	Question   *string         `json:"question,omitempty"`
	Created    *int64          `json:"created,omitempty"`
	EndDate    *int64          `json:"end_date,omitempty"`
	Votes      *int            `json:"votes,omitempty"`
	AnswerIDs  []uint64        `json:"answer_ids,omitempty"`
	Friends    []int64         `json:"friends,omitempty"`
	Answers    []PollAnswer    `json:"answers"`
	Background json.RawMessage `json:"background,omitempty"`
	Photo      json.RawMessage `json:"photo,omitempty"`
}

// UnmarshalJSON keeps an explicit "answers": null distinguishable from a
// missing key by decoding it as an empty list.
func (p *PollPayload) UnmarshalJSON(data []byte) error {
	type plain PollPayload
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if _, ok := keys["answers"]; ok && v.Answers == nil {
		v.Answers = []PollAnswer{}
	}
	*p = PollPayload(v)
	return nil
}

// Poll is a lazily filled poll reference.
type Poll struct {
	lazy[PollPayload]
}

// NewPoll wraps a partial or full payload.
func NewPoll(payload PollPayload, api API) *Poll {
	p := &Poll{}
	p.init(KindPoll, payload.OwnerID, payload.ID, payload.AccessKey)
	p.api = api
	p.payload = &payload
	p.filled = payload.Answers != nil
	return p
}

// LoadAttachmentPayload fetches the poll via polls.getById.
func (p *Poll) LoadAttachmentPayload(ctx context.Context) error {
	return p.fill(ctx, func(ctx context.Context) (*PollPayload, string, error) {
		polls, err := p.api.PollsGetByID(ctx, PollsGetByIDParams{
			PollID:    p.ID(),
			OwnerID:   p.OwnerID(),
			AccessKey: p.AccessKey(),
		})
		if err != nil {
			return nil, "", err
		}
		poll, err := first(&p.Base, polls)
		if err != nil {
			return nil, "", err
		}
		return poll, poll.AccessKey, nil
	})
}

// Payload returns a copy of the current raw payload.
func (p *Poll) Payload() PollPayload {
	payload, _ := p.snapshot()
	return *payload
}

// flag reads a boolean that is only known once filled.
func (p *Poll) flag(get func(*PollPayload) Flag) (bool, bool) {
	payload, filled := p.snapshot()
	if !filled {
		return false, false
	}
	return bool(get(payload)), true
}

func (p *Poll) IsAnonymous() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.Anonymous })
}

// IsMultiple reports whether several answers may be chosen.
func (p *Poll) IsMultiple() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.Multiple })
}

func (p *Poll) IsClosed() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.Closed })
}

// IsBoard reports whether the poll is attached to a board topic.
func (p *Poll) IsBoard() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.IsBoard })
}

func (p *Poll) CanEdit() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.CanEdit })
}

func (p *Poll) CanVote() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.CanVote })
}

func (p *Poll) CanReport() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.CanReport })
}

func (p *Poll) CanShare() (bool, bool) {
	return p.flag(func(pp *PollPayload) Flag { return pp.CanShare })
}

func (p *Poll) AuthorID() (int64, bool) {
	payload, _ := p.snapshot()
	return deref(payload.AuthorID)
}

func (p *Poll) Question() (string, bool) {
	payload, _ := p.snapshot()
	return deref(payload.Question)
}

// CreatedAt returns the creation time as unix seconds.
func (p *Poll) CreatedAt() (int64, bool) {
	payload, _ := p.snapshot()
	return deref(payload.Created)
}

// EndedAt returns the end time as unix seconds; 0 means no end date.
func (p *Poll) EndedAt() (int64, bool) {
	payload, _ := p.snapshot()
	return deref(payload.EndDate)
}

func (p *Poll) Votes() (int, bool) {
	payload, _ := p.snapshot()
	return deref(payload.Votes)
}

// AnswerIDs returns the answers chosen by the current user.
func (p *Poll) AnswerIDs() ([]uint64, bool) {
	payload, _ := p.snapshot()
	if payload.AnswerIDs == nil {
		return nil, false
	}
	return payload.AnswerIDs, true
}

// Friends returns up to three friends who voted. Empty, not absent, once
// the poll is filled.
func (p *Poll) Friends() ([]int64, bool) {
	payload, filled := p.snapshot()
	if !filled {
		return nil, false
	}
	if payload.Friends == nil {
		return []int64{}, true
	}
	return payload.Friends, true
}

func (p *Poll) Answers() ([]PollAnswer, bool) {
	payload, _ := p.snapshot()
	if payload.Answers == nil {
		return nil, false
	}
	return payload.Answers, true
}

// Background returns the snippet background as raw JSON.
func (p *Poll) Background() (json.RawMessage, bool) {
	payload, _ := p.snapshot()
	if len(payload.Background) == 0 {
		return nil, false
	}
	return payload.Background, true
}

// Photo returns the snippet background photo as raw JSON.
func (p *Poll) Photo() (json.RawMessage, bool) {
	payload, _ := p.snapshot()
	if len(payload.Photo) == 0 {
		return nil, false
	}
	return payload.Photo, true
}

// Serialize returns the derived poll view.
func (p *Poll) Serialize() Fields {
	return Fields{
		{Name: "authorId", Value: opt(p.AuthorID())},
		{Name: "question", Value: opt(p.Question())},
		{Name: "createdAt", Value: opt(p.CreatedAt())},
		{Name: "endedAt", Value: opt(p.EndedAt())},
		{Name: "votes", Value: opt(p.Votes())},
		{Name: "answerIds", Value: opt(p.AnswerIDs())},
		{Name: "friends", Value: opt(p.Friends())},
		{Name: "answers", Value: opt(p.Answers())},
		{Name: "background", Value: opt(p.Background())},
		{Name: "photo", Value: opt(p.Photo())},
	}
}

func (p *Poll) MarshalJSON() ([]byte, error) { return marshalAttachment(p) }
