// Package forecast fits an independent additive time-series
// decomposition per franchise over its weekly unit-sales history and
// extrapolates a configurable horizon past the last observed week.
//
// Observed demand decomposes into a linear trend, a weekly-periodic
// component, and a yearly-periodic component. Fitting is closed-form
// least squares, so results are fully deterministic; franchises share
// no parameters or state, and fit order never affects the output.
package forecast
