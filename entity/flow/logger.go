package flow

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "flow")
