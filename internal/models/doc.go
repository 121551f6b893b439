// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Group: a set of members sharing an event log and a settlement policy
//   - Member: a named participant inside one group
//   - Event: an expense or a settlement payment, folded uniformly into balances
//   - SettledRecord: marker that a directional transfer was paid outside the app
//   - Settlement: a suggested transfer produced by the calculator
//   - MemberBalance: per-member totals shown by balance views
//   - User: a registered account (authentication only, not a group member)
//
// # Design Principles
//
// 1. **Snapshots, not handles**: storage returns fully populated Group values that
// the calculator folds without further lookups
// 2. **Names as keys**: members are unique by name within a group, and balances and
// settlements are keyed by member name
// 3. **Avoid circular references**: events embed copies of members, never pointers
package models
