// Package commands implements rvctl, an offline helper for the pricing and
// barcode rules used by the management API.
package commands
