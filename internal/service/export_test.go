package service

import "time"

// SetAuthClock replaces the clock used to sign and check session tokens.
func SetAuthClock(s *AuthService, now func() time.Time) { s.now = now }

// SetBucketClock replaces the clock a TokenBucket refills against.
func SetBucketClock(tb *TokenBucket, now func() time.Time) { tb.now = now }
