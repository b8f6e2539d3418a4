package distribution

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "distribution")
