package services

import "github.com/google/uuid"

// HierarchyIndex is an adjacency view over the fetched user list, built once
// per run. Subordinate order follows the order users were fetched in.
type HierarchyIndex struct {
	records      map[uuid.UUID]User
	subordinates map[uuid.UUID][]uuid.UUID
}

func NewHierarchyIndex(users []User) *HierarchyIndex {
	ix := &HierarchyIndex{
		records:      make(map[uuid.UUID]User, len(users)),
		subordinates: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, u := range users {
		ix.records[u.ID] = u
	}
	for _, u := range users {
		if u.ManagerID == nil || *u.ManagerID == uuid.Nil {
			continue
		}
		ix.subordinates[*u.ManagerID] = append(ix.subordinates[*u.ManagerID], u.ID)
	}
	return ix
}

func (ix *HierarchyIndex) SubordinatesOf(managerID uuid.UUID) []User {
	ids := ix.subordinates[managerID]
	out := make([]User, 0, len(ids))
	for _, id := range ids {
		out = append(out, ix.records[id])
	}
	return out
}

func (ix *HierarchyIndex) RecordOf(id uuid.UUID) (User, bool) {
	u, ok := ix.records[id]
	return u, ok
}

func (ix *HierarchyIndex) ManagerOf(id uuid.UUID) (User, bool) {
	u, ok := ix.records[id]
	if !ok || u.ManagerID == nil {
		return User{}, false
	}
	return ix.RecordOf(*u.ManagerID)
}

func (ix *HierarchyIndex) Len() int { return len(ix.records) }
