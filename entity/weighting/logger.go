package weighting

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "weighting")
