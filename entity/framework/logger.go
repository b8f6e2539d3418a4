package framework

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "framework")
