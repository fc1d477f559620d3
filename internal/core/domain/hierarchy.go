package domain

import (
	"errors"
	"fmt"
)

// ErrCyclicHierarchy is returned when an account's parent chain loops back
// onto itself. Such input is malformed and cannot be resolved.
var ErrCyclicHierarchy = errors.New("cyclic account hierarchy")

// ResolveFullNames computes the full hierarchical name of every account in
// the list. The list may arrive in arbitrary order, may lack an explicit
// ROOT account, and may reference parents that are not present; accounts
// with an unknown parent are treated as top-level. Every resolved name is
// memoized so no parent chain is walked twice.
func ResolveFullNames(accounts []*Account) error {
	byUID := make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		byUID[a.UID] = a
	}
	for _, a := range accounts {
		if a.FullName != "" {
			continue
		}
		if err := resolveFullName(a, byUID); err != nil {
			return err
		}
	}
	return nil
}

// resolveFullName walks up the parent chain with an explicit stack rather
// than recursion, so malformed input cannot blow the call stack. A visited
// set guards against cyclic parent chains.
func resolveFullName(acct *Account, byUID map[string]*Account) error {
	var chain []*Account
	visited := make(map[string]bool)
	prefix := ""

	cur := acct
	for cur != nil {
		if cur.FullName != "" {
			// Already resolved ancestor; concatenate below.
			prefix = cur.FullName
			break
		}
		if visited[cur.UID] {
			return fmt.Errorf("%w: account %s is its own ancestor", ErrCyclicHierarchy, cur.UID)
		}
		visited[cur.UID] = true

		if cur.IsRoot() {
			// The leading space makes ROOT sort before every other
			// account; its name never prefixes descendants.
			cur.FullName = " " + cur.Name
			break
		}
		chain = append(chain, cur)
		cur = byUID[cur.ParentUID]
	}

	// A ROOT ancestor, memoized or freshly resolved, contributes no prefix.
	if cur != nil && cur.IsRoot() {
		prefix = ""
	}

	for i := len(chain) - 1; i >= 0; i-- {
		a := chain[i]
		if prefix == "" {
			a.FullName = a.Name
		} else {
			a.FullName = prefix + FullNameDelimiter + a.Name
		}
		prefix = a.FullName
	}
	return nil
}
