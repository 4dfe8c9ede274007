package journal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a record type by its leading letter.
type Kind byte

const (
	KindUser   Kind = 'U'
	KindPost   Kind = 'P'
	KindFollow Kind = 'F'
	KindLike   Kind = 'L'
)

// ErrMalformed is returned for lines that do not parse as a record.
var ErrMalformed = errors.New("malformed record")

// Record is one line of the log. Which fields are meaningful depends on Kind:
//
//	U|id|username          ID, Text
//	P|id|author_id|content ID, Ref, Text
//	F|follower|followee    ID, Ref
//	L|user|post            ID, Ref
type Record struct {
	Kind Kind
	ID   int64
	Ref  int64
	Text string
}

func UserRecord(id int64, username string) Record {
	return Record{Kind: KindUser, ID: id, Text: username}
}

func PostRecord(id, authorID int64, content string) Record {
	return Record{Kind: KindPost, ID: id, Ref: authorID, Text: content}
}

func FollowRecord(follower, followee int64) Record {
	return Record{Kind: KindFollow, ID: follower, Ref: followee}
}

func LikeRecord(userID, postID int64) Record {
	return Record{Kind: KindLike, ID: userID, Ref: postID}
}

// String encodes the record without the trailing newline.
func (r Record) String() string {
	switch r.Kind {
	case KindUser:
		return fmt.Sprintf("U|%d|%s", r.ID, r.Text)
	case KindPost:
		return fmt.Sprintf("P|%d|%d|%s", r.ID, r.Ref, r.Text)
	case KindFollow:
		return fmt.Sprintf("F|%d|%d", r.ID, r.Ref)
	case KindLike:
		return fmt.Sprintf("L|%d|%d", r.ID, r.Ref)
	}
	return ""
}

// Parse decodes one line. The line is split on the first delimiters only; the
// remainder is the last field verbatim, so usernames and content may contain
// '|' but ids may not.
func Parse(line string) (Record, error) {
	if len(line) < 2 || line[1] != '|' {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}

	kind := Kind(line[0])
	switch kind {
	case KindUser:
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return Record{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Record{}, err
		}
		return UserRecord(id, parts[2]), nil

	case KindPost:
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			return Record{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Record{}, err
		}
		author, err := parseID(parts[2])
		if err != nil {
			return Record{}, err
		}
		return PostRecord(id, author, parts[3]), nil

	case KindFollow, KindLike:
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return Record{}, fmt.Errorf("%w: %q", ErrMalformed, line)
		}
		a, err := parseID(parts[1])
		if err != nil {
			return Record{}, err
		}
		b, err := parseID(parts[2])
		if err != nil {
			return Record{}, err
		}
		return Record{Kind: kind, ID: a, Ref: b}, nil
	}

	return Record{}, fmt.Errorf("%w: unknown kind %q", ErrMalformed, line[0])
}

// parseID accepts strictly positive ids only.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", ErrMalformed, s)
	}
	return id, nil
}
