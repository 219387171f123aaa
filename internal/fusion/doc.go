// Package fusion collapses N parallel sensor channels into one authoritative
// signal per timestamp: a conservative minimum, an arithmetic mean, or a
// majority vote against a threshold. Null handling is explicit per mode;
// nothing here relies on NaN arithmetic.
package fusion
