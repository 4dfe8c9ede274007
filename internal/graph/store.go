package graph

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"socialgraph/internal/journal"
	"socialgraph/internal/moderation"
	"socialgraph/internal/trie"
)

type idSet map[int64]struct{}

type post struct {
	id       int64
	authorID int64
	content  string
	likers   idSet
}

// Options configures a Store.
type Options struct {
	// Path is the journal file. Empty keeps the store in memory only.
	Path string

	// Moderator screens post content. Nil uses moderation.DefaultDenylist.
	Moderator *moderation.Moderator

	Logger *zap.Logger
}

// Store is the in-memory social graph.
//
// A single RWMutex guards everything: mutators hold it exclusively for their
// whole duration, journal I/O included, and readers hold it shared. The tries
// are only touched under that lock; the moderator is immutable.
type Store struct {
	mu sync.RWMutex

	nextUserID int64
	nextPostID int64

	users     map[int64]string
	posts     map[int64]*post
	followers map[int64]idSet // user -> who follows them
	followees map[int64]idSet // user -> who they follow
	index     map[string]idSet
	scores    map[int64]float64

	usernames *trie.Trie
	keywords  *trie.Trie
	moderator *moderation.Moderator

	journal  *journal.Journal
	log      *zap.Logger
	ioErrors atomic.Int64

	// partialReplay is set when the journal could not be read to the end.
	// Compaction would then drop the unread tail, so it is refused.
	partialReplay bool
}

// ErrPartialReplay is returned by Compact when the journal was only partly
// loaded at startup.
var ErrPartialReplay = errors.New("journal was not fully replayed, refusing to rewrite it")

// New builds a store and replays the journal at opts.Path, if any.
// A journal that cannot be read leaves the store empty; the failure is logged
// and counted but never returned.
func New(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	mod := opts.Moderator
	if mod == nil {
		mod = moderation.NewModerator(moderation.DefaultDenylist)
	}

	s := &Store{
		nextUserID: 1,
		nextPostID: 1,
		users:      make(map[int64]string),
		posts:      make(map[int64]*post),
		followers:  make(map[int64]idSet),
		followees:  make(map[int64]idSet),
		index:      make(map[string]idSet),
		scores:     make(map[int64]float64),
		usernames:  trie.New(),
		keywords:   trie.New(),
		moderator:  mod,
		log:        log.Named("graph"),
	}

	if opts.Path != "" {
		s.journal = journal.Open(opts.Path, s.log)
		s.load()
	}

	return s
}

// load replays the journal. Records are applied as written, without the
// business rules the mutators enforce.
func (s *Store) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usernames.Clear()
	s.keywords.Clear()

	n, err := s.journal.Replay(s.applyLocked)
	if err != nil {
		s.partialReplay = true
		s.durabilityFailure("replay", err)
	}

	s.log.Info("journal replayed",
		zap.String("path", s.journal.Path()),
		zap.Int("records", n),
		zap.Int("users", len(s.users)),
		zap.Int("posts", len(s.posts)))
}

func (s *Store) applyLocked(rec journal.Record) {
	switch rec.Kind {
	case journal.KindUser:
		s.insertUserLocked(rec.ID, rec.Text)
	case journal.KindPost:
		s.insertPostLocked(rec.ID, rec.Ref, rec.Text)
	case journal.KindFollow:
		s.insertFollowLocked(rec.ID, rec.Ref)
	case journal.KindLike:
		if p, ok := s.posts[rec.Ref]; ok {
			p.likers[rec.ID] = struct{}{}
		}
	}
}

func (s *Store) insertUserLocked(id int64, username string) {
	s.users[id] = username
	s.usernames.Insert(username)
	if id >= s.nextUserID {
		s.nextUserID = id + 1
	}
}

func (s *Store) insertPostLocked(id, authorID int64, content string) {
	s.posts[id] = &post{id: id, authorID: authorID, content: content, likers: make(idSet)}
	for _, tok := range moderation.Tokenize(content) {
		bucket, ok := s.index[tok]
		if !ok {
			bucket = make(idSet)
			s.index[tok] = bucket
		}
		bucket[id] = struct{}{}
		s.keywords.Insert(tok)
	}
	if id >= s.nextPostID {
		s.nextPostID = id + 1
	}
}

func (s *Store) insertFollowLocked(a, b int64) {
	out, ok := s.followees[a]
	if !ok {
		out = make(idSet)
		s.followees[a] = out
	}
	out[b] = struct{}{}

	in, ok := s.followers[b]
	if !ok {
		in = make(idSet)
		s.followers[b] = in
	}
	in[a] = struct{}{}
}

// removePostLocked drops a post and its index entries.
func (s *Store) removePostLocked(p *post) {
	for _, tok := range moderation.Tokenize(p.content) {
		if bucket, ok := s.index[tok]; ok {
			delete(bucket, p.id)
			if len(bucket) == 0 {
				delete(s.index, tok)
			}
		}
	}
	delete(s.posts, p.id)
}

// rebuildTriesLocked repopulates autocomplete from live data so deleted
// usernames and keywords stop being suggested.
func (s *Store) rebuildTriesLocked(usernames bool) {
	if usernames {
		s.usernames.Clear()
		for _, id := range sortedKeys(s.users) {
			s.usernames.Insert(s.users[id])
		}
	}

	s.keywords.Clear()
	for tok := range s.index {
		s.keywords.Insert(tok)
	}
}

func (s *Store) appendLocked(rec journal.Record) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(rec); err != nil {
		s.durabilityFailure("append", err)
	}
}

// compactLocked rewrites the journal from live state: users, posts whose author
// exists, follow edges whose endpoints both exist, likes whose liker and post
// author exist.
func (s *Store) compactLocked() error {
	if s.journal == nil {
		return nil
	}
	if s.partialReplay {
		s.durabilityFailure("compact", ErrPartialReplay)
		return ErrPartialReplay
	}

	records := make([]journal.Record, 0, len(s.users)+len(s.posts))
	for _, id := range sortedKeys(s.users) {
		records = append(records, journal.UserRecord(id, s.users[id]))
	}

	postIDs := sortedKeys(s.posts)
	for _, id := range postIDs {
		p := s.posts[id]
		if _, ok := s.users[p.authorID]; ok {
			records = append(records, journal.PostRecord(p.id, p.authorID, p.content))
		}
	}

	for _, a := range sortedKeys(s.followees) {
		if _, ok := s.users[a]; !ok {
			continue
		}
		for _, b := range sortedIDs(s.followees[a]) {
			if _, ok := s.users[b]; ok {
				records = append(records, journal.FollowRecord(a, b))
			}
		}
	}

	for _, id := range postIDs {
		p := s.posts[id]
		if _, ok := s.users[p.authorID]; !ok {
			continue
		}
		for _, uid := range sortedIDs(p.likers) {
			if _, ok := s.users[uid]; ok {
				records = append(records, journal.LikeRecord(uid, p.id))
			}
		}
	}

	if err := s.journal.Rewrite(records); err != nil {
		s.durabilityFailure("compact", err)
		return err
	}

	s.log.Debug("journal compacted", zap.Int("records", len(records)))
	return nil
}

// durabilityFailure records a swallowed journal error. In-memory state stays
// authoritative; only durability degrades.
func (s *Store) durabilityFailure(op string, err error) {
	s.ioErrors.Add(1)
	s.log.Warn("journal write failed, continuing in memory",
		zap.String("op", op),
		zap.Error(err))
}

// DurabilityErrors returns how many journal failures have been swallowed.
func (s *Store) DurabilityErrors() int64 {
	return s.ioErrors.Load()
}

// JournalPath returns the journal location, or "" for an in-memory store.
func (s *Store) JournalPath() string {
	if s.journal == nil {
		return ""
	}
	return s.journal.Path()
}

// Compact rewrites the journal from the current state.
func (s *Store) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compactLocked()
}

// Close compacts the journal. It is called once at shutdown.
func (s *Store) Close() error {
	return s.Compact()
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedIDs(set idSet) []int64 {
	return sortedKeys(set)
}
