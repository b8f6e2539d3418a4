package prototype

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "prototype")
