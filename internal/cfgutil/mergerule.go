// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import "github.com/btcsuite/utxoset/utxo"

// MergeRuleFlag embeds a utxo.MergeRule and implements the flags.Marshaler
// and Unmarshaler interfaces so it can be used as a config struct field.
type MergeRuleFlag struct {
	utxo.MergeRule
}

// NewMergeRuleFlag creates a MergeRuleFlag with a default rule.
func NewMergeRuleFlag(defaultValue utxo.MergeRule) *MergeRuleFlag {
	return &MergeRuleFlag{defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (m *MergeRuleFlag) MarshalFlag() (string, error) {
	return m.MergeRule.String(), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (m *MergeRuleFlag) UnmarshalFlag(value string) error {
	rule, err := utxo.ParseMergeRule(value)
	if err != nil {
		return err
	}
	m.MergeRule = rule
	return nil
}
