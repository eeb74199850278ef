// Package posekit computes kinematic quantities over animal-pose time
// series: labeled pose datasets, schema validation, lazily computed and
// cached displacement/velocity/acceleration, confidence filtering and gap
// interpolation, and speed reporting.
//
// The subpackages are organized by concern:
//
//   - dataset: the labeled pose dataset, its schema validator, and the
//     operation log
//   - move: the kinematic accessor (validate, compute, cache)
//   - kinematics: finite-difference kinematics over the time axis
//   - filtering: confidence masking and time-axis interpolation
//   - vector, navigation: spatial-axis utilities and derived navigation
//     variables
//   - report: speed summaries, charts, and trajectory plots
//   - store: SQLite persistence for logs and summaries
package posekit
