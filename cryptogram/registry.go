package cryptogram

// MethodDef is one callable method on a service: the HTTP verb and the
// path-and-query template to call it with.
type MethodDef struct {
	HTTPMethod   string
	PathAndQuery string
}

// ServiceDefinition describes one backend a step's Service field can
// resolve to: a scheme+authority pair plus its set of callable methods.
type ServiceDefinition struct {
	Scheme       string
	Authority    string
	Methods      map[string]MethodDef
	Virtualhosts []string
}

// ServiceRegistry maps a service name (as referenced by Step.Service) to
// its definition. It is built once at startup from configuration and is
// read-only thereafter, so it needs no locking.
type ServiceRegistry map[string]ServiceDefinition

// Service resolves a service name. ok is false if it is not registered.
func (r ServiceRegistry) Service(name string) (ServiceDefinition, bool) {
	svc, ok := r[name]
	return svc, ok
}

// Method resolves a method name against a resolved service. ok is false if
// the method is not defined on that service.
func (svc ServiceDefinition) Method(name string) (MethodDef, bool) {
	m, ok := svc.Methods[name]
	return m, ok
}
