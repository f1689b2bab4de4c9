package main

// @generated from eval_test.go

//go:generate go run scripts/gen_expects.go -- eval_test.go expects_test.go

import "time"

func exclusiveEvalTest() func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.exclusiveTest()
	}
}

func withEvalOptions(opts ...Option) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.withOptions(opts...)
	}
}

func withEvalInput(input string) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.withInput(input)
	}
}

func withEvalNamedInput(name string, input string) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.withNamedInput(name, input)
	}
}

func withEvalMaxDepth(limit int) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.withMaxDepth(limit)
	}
}

func withEvalTimeout(timeout time.Duration) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.withTimeout(timeout)
	}
}

func withEvalTestOutput() func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.withTestOutput()
	}
}

func expectEvalError(err error) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.expectError(err)
	}
}

func expectEvalErrorMessage(mess string) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.expectErrorMessage(mess)
	}
}

func expectEvalOutput(output string) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.expectOutput(output)
	}
}

func expectEvalGlobal(name Symbol, val Value) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.expectGlobal(name, val)
	}
}

func expectEvalDump(dump string) func(evalTestCase) evalTestCase {
	return func(evt evalTestCase) evalTestCase {
		return evt.expectDump(dump)
	}
}
