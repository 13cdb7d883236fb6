// Package common holds the pieces shared between the kvkit command line tools
// and the libraries: the dragonboat logger factory used for all kvkit loggers
// and the configuration structure of the benchmark command.
package common
