package utils

import (
	"time"
)

type timeSourceImpl struct{}

func (this *timeSourceImpl) Now() time.Time {
	return time.Now()
}

func NewTimeSourceImpl() TimeSource {
	return &timeSourceImpl{}
}
