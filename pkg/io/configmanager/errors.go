package configmanager

import "errors"

// ErrUnsupportedAPIVersion is returned when a config file declares an apiVersion other than devrig.sh/v1alpha1.
var ErrUnsupportedAPIVersion = errors.New("unsupported apiVersion")

// ErrUnsupportedKind is returned when a config file declares a kind other than Rig.
var ErrUnsupportedKind = errors.New("unsupported kind")
