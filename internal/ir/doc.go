// Package ir provides the shared value types for flowline.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the step, projection
// and error vocabulary in one foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - StartID and EndID are reserved and always present in a workflow
//   - Coordinates are integers; canonical JSON forbids floats
//   - All JSON tags use snake_case
//   - Frames carry a logical sequence number, never wall-clock time
package ir
