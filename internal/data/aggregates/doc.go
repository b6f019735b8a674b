// Package aggregates implements the domain aggregate contracts on GORM.
//
// Every write runs inside a single transaction owned by the aggregate; all
// failures are mapped to domain aggregate error codes before they leave.
package aggregates
