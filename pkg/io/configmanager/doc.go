// Package configmanager loads devrig configuration into a v1alpha1.Rig.
//
// Configuration priority: defaults < devrig.yaml < DEVRIG_* environment
// variables < command-line flags. A missing config file is not an error;
// the built-in defaults apply.
package configmanager
