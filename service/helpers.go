package service

import (
	"fmt"
)

// background launches a background goroutine and recovers from panics inside
// the goroutine. It accepts an arbitrary function as a parameter and executes
// the function parameter inside the goroutine.
func (s *service) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				s.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()
		fn()
	}()
}

// notify sends an email in the background. Failures are logged and never reach
// the caller.
func (s *service) notify(recipient, templateFile string, data map[string]any) {
	if s.mailer == nil {
		return
	}
	s.background(func() {
		err := s.mailer.Send(recipient, templateFile, data)
		if err != nil {
			s.logger.PrintError(err, map[string]string{
				"recipient": recipient,
				"template":  templateFile,
			})
		}
	})
}
