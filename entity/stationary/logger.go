package stationary

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "stationary")
