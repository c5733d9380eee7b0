package firewall

import (
	"fmt"
	"strings"
	"sync"
)

// MockIPTables is an in-memory implementation of IPTablesConn for
// testing. It mirrors the semantics of the real backend where they
// matter to the apply layer: Exists on a missing chain reports false
// without error (iptables -C exit status 1), while mutating a missing
// chain fails, creating an existing chain fails, and deleting a
// non-empty chain fails.
type MockIPTables struct {
	mu sync.Mutex

	chains map[string]map[string]bool // table -> set of chains
	rules  map[string][]string        // table/chain -> rendered rule text

	// Errs forces the named operation ("exists", "append", "insert",
	// "delete", "newchain", "clearchain", "deletechain", "listchains")
	// to fail.
	Errs map[string]error
}

// NewMockIPTables returns a mock with the built-in chains of the filter
// and nat tables already present.
func NewMockIPTables() *MockIPTables {
	m := &MockIPTables{
		chains: map[string]map[string]bool{
			tableFilter: {"INPUT": true, "FORWARD": true, "OUTPUT": true},
			tableNAT:    {"PREROUTING": true, "INPUT": true, "OUTPUT": true, "POSTROUTING": true},
		},
		rules: make(map[string][]string),
		Errs:  make(map[string]error),
	}
	return m
}

func ruleKey(table, chain string) string {
	return table + "/" + chain
}

func (m *MockIPTables) hasChain(table, chain string) bool {
	return m.chains[table][chain]
}

func (m *MockIPTables) ListChains(table string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["listchains"]; err != nil {
		return nil, err
	}
	chains := make([]string, 0, len(m.chains[table]))
	for c := range m.chains[table] {
		chains = append(chains, c)
	}
	return chains, nil
}

func (m *MockIPTables) NewChain(table, chain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["newchain"]; err != nil {
		return err
	}
	if m.hasChain(table, chain) {
		return fmt.Errorf("chain already exists: %s/%s", table, chain)
	}
	if m.chains[table] == nil {
		m.chains[table] = make(map[string]bool)
	}
	m.chains[table][chain] = true
	return nil
}

func (m *MockIPTables) ClearChain(table, chain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["clearchain"]; err != nil {
		return err
	}
	if m.chains[table] == nil {
		m.chains[table] = make(map[string]bool)
	}
	m.chains[table][chain] = true
	m.rules[ruleKey(table, chain)] = nil
	return nil
}

func (m *MockIPTables) DeleteChain(table, chain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["deletechain"]; err != nil {
		return err
	}
	if !m.hasChain(table, chain) {
		return fmt.Errorf("no chain: %s/%s", table, chain)
	}
	if len(m.rules[ruleKey(table, chain)]) > 0 {
		return fmt.Errorf("chain not empty: %s/%s", table, chain)
	}
	delete(m.chains[table], chain)
	delete(m.rules, ruleKey(table, chain))
	return nil
}

func (m *MockIPTables) Exists(table, chain string, rulespec ...string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["exists"]; err != nil {
		return false, err
	}
	rule := strings.Join(rulespec, " ")
	for _, r := range m.rules[ruleKey(table, chain)] {
		if r == rule {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockIPTables) Append(table, chain string, rulespec ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["append"]; err != nil {
		return err
	}
	if !m.hasChain(table, chain) {
		return fmt.Errorf("no chain: %s/%s", table, chain)
	}
	key := ruleKey(table, chain)
	m.rules[key] = append(m.rules[key], strings.Join(rulespec, " "))
	return nil
}

func (m *MockIPTables) Insert(table, chain string, pos int, rulespec ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["insert"]; err != nil {
		return err
	}
	if !m.hasChain(table, chain) {
		return fmt.Errorf("no chain: %s/%s", table, chain)
	}
	key := ruleKey(table, chain)
	rules := m.rules[key]
	if pos < 1 || pos > len(rules)+1 {
		return fmt.Errorf("invalid position %d in %s/%s", pos, table, chain)
	}
	rule := strings.Join(rulespec, " ")
	idx := pos - 1
	rules = append(rules[:idx], append([]string{rule}, rules[idx:]...)...)
	m.rules[key] = rules
	return nil
}

func (m *MockIPTables) Delete(table, chain string, rulespec ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Errs["delete"]; err != nil {
		return err
	}
	key := ruleKey(table, chain)
	rule := strings.Join(rulespec, " ")
	for i, r := range m.rules[key] {
		if r == rule {
			m.rules[key] = append(m.rules[key][:i], m.rules[key][i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no rule %q in %s/%s", rule, table, chain)
}

// Rules returns the rendered rules of a chain in order, for assertions.
func (m *MockIPTables) Rules(table, chain string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rules := m.rules[ruleKey(table, chain)]
	out := make([]string, len(rules))
	copy(out, rules)
	return out
}

// HasChain reports whether the chain exists, for assertions.
func (m *MockIPTables) HasChain(table, chain string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasChain(table, chain)
}

// AllRules returns every rendered rule of every chain keyed by
// table/chain, for whole-state assertions.
func (m *MockIPTables) AllRules() map[string][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]string, len(m.rules))
	for k, v := range m.rules {
		if len(v) == 0 {
			continue
		}
		rules := make([]string, len(v))
		copy(rules, v)
		out[k] = rules
	}
	return out
}
