package firewall

import (
	"fmt"
	"strings"
)

// Idempotent apply layer. The iptables primitives are check-then-mutate
// pairs that are not atomic at the backend level; a concurrent process
// performing the same add or remove is acceptable because the final
// state converges either way.

// appendUnique appends a rule to table/chain unless an identical rule is
// already present.
func (d *IptablesDriver) appendUnique(table, chain string, rulespec ...string) error {
	exists, err := d.conn.Exists(table, chain, rulespec...)
	if err != nil {
		return fmt.Errorf("check rule %q in %s/%s: %w", strings.Join(rulespec, " "), table, chain, err)
	}
	if exists {
		d.logger.Debug("rule exists", "table", table, "chain", chain, "rule", strings.Join(rulespec, " "))
		return nil
	}
	if err := d.conn.Append(table, chain, rulespec...); err != nil {
		return fmt.Errorf("append rule %q to %s/%s: %w", strings.Join(rulespec, " "), table, chain, err)
	}
	d.metrics.RuleAdded(table)
	d.logger.Debug("rule created", "table", table, "chain", chain, "rule", strings.Join(rulespec, " "))
	return nil
}

// insertUnique inserts a rule at the given position unless an identical
// rule is already present anywhere in the chain. Used for the one jump
// that must hold first-match priority over user and default rules.
func (d *IptablesDriver) insertUnique(table, chain string, pos int, rulespec ...string) error {
	exists, err := d.conn.Exists(table, chain, rulespec...)
	if err != nil {
		return fmt.Errorf("check rule %q in %s/%s: %w", strings.Join(rulespec, " "), table, chain, err)
	}
	if exists {
		d.logger.Debug("rule exists", "table", table, "chain", chain, "rule", strings.Join(rulespec, " "))
		return nil
	}
	if err := d.conn.Insert(table, chain, pos, rulespec...); err != nil {
		return fmt.Errorf("insert rule %q into %s/%s: %w", strings.Join(rulespec, " "), table, chain, err)
	}
	d.metrics.RuleAdded(table)
	d.logger.Debug("rule created", "table", table, "chain", chain, "rule", strings.Join(rulespec, " "), "position", pos)
	return nil
}

// addChainUnique creates the chain if it does not exist yet.
func (d *IptablesDriver) addChainUnique(table, chain string) error {
	exists, err := d.chainExists(table, chain)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := d.conn.NewChain(table, chain); err != nil {
		return fmt.Errorf("create chain %s/%s: %w", table, chain, err)
	}
	d.metrics.ChainsCreated.WithLabelValues(table).Inc()
	d.logger.Debug("chain created", "table", table, "chain", chain)
	return nil
}

// chainExists reports whether the chain is present in the table. The
// check scans the full chain listing: the single-chain lookup the
// backend offers is disproportionately slower, so a listing scan is the
// cheaper call even for one chain.
func (d *IptablesDriver) chainExists(table, chain string) (bool, error) {
	chains, err := d.conn.ListChains(table)
	if err != nil {
		return false, fmt.Errorf("list chains of table %s: %w", table, err)
	}
	for _, c := range chains {
		if c == chain {
			d.logger.Debug("chain exists", "table", table, "chain", chain)
			return true, nil
		}
	}
	return false, nil
}

// removeIfExists deletes a rule, treating an already-absent rule as
// success.
func (d *IptablesDriver) removeIfExists(table, chain string, rulespec ...string) error {
	exists, err := d.conn.Exists(table, chain, rulespec...)
	if err != nil {
		return fmt.Errorf("check rule %q in %s/%s: %w", strings.Join(rulespec, " "), table, chain, err)
	}
	if !exists {
		d.logger.Debug("no rule to remove", "table", table, "chain", chain, "rule", strings.Join(rulespec, " "))
		return nil
	}
	if err := d.conn.Delete(table, chain, rulespec...); err != nil {
		return fmt.Errorf("delete rule %q from %s/%s: %w", strings.Join(rulespec, " "), table, chain, err)
	}
	d.metrics.RuleRemoved(table)
	d.logger.Debug("rule removed", "table", table, "chain", chain, "rule", strings.Join(rulespec, " "))
	return nil
}

// removeChainAndRules flushes and deletes a chain. An already-absent
// chain is success.
func (d *IptablesDriver) removeChainAndRules(table, chain string) error {
	exists, err := d.chainExists(table, chain)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := d.conn.ClearChain(table, chain); err != nil {
		return fmt.Errorf("flush chain %s/%s: %w", table, chain, err)
	}
	if err := d.conn.DeleteChain(table, chain); err != nil {
		return fmt.Errorf("delete chain %s/%s: %w", table, chain, err)
	}
	d.metrics.ChainsDeleted.WithLabelValues(table).Inc()
	d.logger.Debug("chain removed", "table", table, "chain", chain)
	return nil
}
