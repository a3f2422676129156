package core

import "github.com/semitha-uni-west/google-beet/internal/domain"

// Navigator moves the user between views.
type Navigator interface {
	Navigate(domain.Route)
}

type NavigatorFunc func(domain.Route)

func (f NavigatorFunc) Navigate(r domain.Route) { f(r) }
