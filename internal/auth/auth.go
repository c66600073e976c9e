// Package auth decides which users may operate the bot.
package auth

import (
	"fmt"
	"strconv"
	"strings"
)

// AllowList is a fixed set of operator user IDs.
type AllowList struct {
	ids map[int64]struct{}
}

func NewAllowList(ids ...int64) *AllowList {
	a := &AllowList{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// ParseAllowList reads a comma separated list of user IDs.
func ParseAllowList(csv string) (*AllowList, error) {
	var ids []int64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return NewAllowList(ids...), nil
}

func (a *AllowList) IsAllowed(userID int64) bool {
	if a == nil {
		return false
	}
	_, ok := a.ids[userID]
	return ok
}

func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.ids)
}
