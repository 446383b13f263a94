// Package discovery lists the models a provider offers and tags each with
// its cost tier and vision capability.
package discovery
