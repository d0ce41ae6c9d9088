// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes circuit breaker implementations protecting the database
// and the four delivery channels from cascading failures.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.EmailDeliveryConfig())
//	_, err := cb.Execute(func() (interface{}, error) {
//	    return nil, sendEmail()
//	})
package resilience
