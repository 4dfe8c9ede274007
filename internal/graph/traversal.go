package graph

import (
	"sort"

	"socialgraph/internal/community"
	"socialgraph/internal/model"
)

// ShortestPath returns the fewest-hop directed follow path from u1 to u2,
// both ends included. u1 == u2 yields [u1]; no path yields an empty slice.
func (s *Store) ShortestPath(u1, u2 int64) []int64 {
	if u1 == u2 {
		return []int64{u1}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	parent := map[int64]int64{u1: 0}
	queue := []int64{u1}
	found := false

	for len(queue) > 0 && !found {
		u := queue[0]
		queue = queue[1:]

		for _, v := range sortedIDs(s.followees[u]) {
			if _, seen := parent[v]; seen {
				continue
			}
			parent[v] = u
			if v == u2 {
				found = true
				break
			}
			queue = append(queue, v)
		}
	}

	if !found {
		return []int64{}
	}

	var path []int64
	for x := u2; ; x = parent[x] {
		path = append(path, x)
		if x == u1 {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Recommendations suggests up to model.RecommendationLimit users u does not
// already follow, most similar followee sets first. Ties keep ascending id
// order.
func (s *Store) Recommendations(u int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type candidate struct {
		id  int64
		sim float64
	}

	mine := s.followees[u]
	var candidates []candidate
	for _, v := range sortedKeys(s.users) {
		if v == u {
			continue
		}
		if _, already := mine[v]; already {
			continue
		}
		candidates = append(candidates, candidate{id: v, sim: jaccard(mine, s.followees[v])})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].sim > candidates[j].sim })

	out := make([]int64, 0, model.RecommendationLimit)
	for i := 0; i < len(candidates) && i < model.RecommendationLimit; i++ {
		out = append(out, candidates[i].id)
	}
	return out
}

// Communities groups users whose followee sets overlap: every pair with
// Jaccard similarity above model.CommunityJaccardCut is united. Groups are
// keyed by their union-find representative and returned in ascending id order.
//
// This compares all pairs on every call.
func (s *Store) Communities() []model.Community {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.communitiesLocked()
}

// CommunityMembers recomputes the communities and returns the members of cid,
// or an empty slice.
func (s *Store) CommunityMembers(cid int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.communitiesLocked() {
		if c.ID == cid {
			return c.Members
		}
	}
	return []int64{}
}

func (s *Store) communitiesLocked() []model.Community {
	uf := community.NewUnionFind(int(s.nextUserID) + model.CommunityForestSlack)

	ids := sortedKeys(s.users)
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			if jaccard(s.followees[a], s.followees[b]) > model.CommunityJaccardCut {
				uf.Unite(int(a), int(b))
			}
		}
	}

	components := uf.Components()
	roots := make([]int, 0, len(components))
	for root := range components {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	out := make([]model.Community, 0)
	for _, root := range roots {
		var members []int64
		for _, id := range components[root] {
			if _, live := s.users[int64(id)]; live {
				members = append(members, int64(id))
			}
		}
		if len(members) > 0 {
			out = append(out, model.Community{ID: int64(root), Members: members})
		}
	}
	return out
}

// jaccard is |a ∩ b| / |a ∪ b|, defined as 1 when both sets are empty.
func jaccard(a, b idSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	inter := 0
	for x := range a {
		if _, ok := b[x]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
