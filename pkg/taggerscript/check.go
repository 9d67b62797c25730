package taggerscript

// check verifies every function call in a script that the grammar
// accepted: the function must be registered (unless unknown functions are
// allowed) and must be called with an accepted number of arguments.
//
// Names are checked before the arguments are visited and counts after,
// so an unknown outer function is reported ahead of problems inside its
// arguments, while an inner call with a bad count is reported ahead of
// the outer call's count.
func (p *Parser) check(text string, script *Script) error {
	return p.checkParts(text, script.Parts)
}

func (p *Parser) checkParts(text string, parts []*Part) error {
	for _, part := range parts {
		if part.Function == nil {
			continue
		}
		if err := p.checkFunction(text, part.Function); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) checkFunction(text string, fn *Function) error {
	name := fn.Name()
	arity, known := p.registry.Lookup(name)
	if !known && !p.allowUnknown {
		return newSyntaxError(ErrUnknownFunction, positionAt(text, fn.Pos.Offset), "Unknown function '%s'", name)
	}

	args := fn.Args()
	for _, arg := range args {
		if err := p.checkParts(text, arg); err != nil {
			return err
		}
	}

	if known && !arity.Accepts(len(args)) {
		return newSyntaxError(ErrArity, positionAt(text, fn.Pos.Offset),
			"Wrong number of arguments for $%s: Expected %s, got %d", name, arity.Expected(), len(args))
	}
	return nil
}
