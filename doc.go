/* Package main: minilisp, a very small LISP

minilisp evaluates a tiny LISP dialect: integers, booleans, symbols, three
special forms, a fixed set of primitives, and closures.

	(define fact
	  (fun (n)
	    (if (< n 3) n (* n (fact (- n 1))))))
	(print-num (fact 4))

Section 1: Values

There are four kinds of value: Numbers (host sized integers), Booleans
(written #t and #f), Procedures made by fun, and Primitives. Forms like
define and print-num produce no value at all; using one where a value is
expected is a type error.

Section 2: Environments

Names live in environment frames. Each frame maps names to values and may
have an outer frame; looking up a name searches outward from the innermost
frame. Every program starts with a global frame, whose outer frame holds the
primitives and constants; that builtin frame is shared and never changes.

Calling a procedure creates a new frame binding its parameters, inside of the
frame where the procedure was created, not the frame where it was called:
scoping is lexical. A frame captured by a procedure lives as long as the
procedure does, and a define into a shared frame is seen by everyone sharing
it.

Section 3: Special forms

	(if cond then else)  evaluates cond, which must be a Boolean, and then
	                     only the chosen branch.
	(define name expr)   binds name in the current frame.
	(fun (params...) body...)
	                     creates a procedure; calling it evaluates each body
	                     expression in order, returning the last value.

Section 4: Primitives

	+ * =        two or more Numbers; = is true if all are equal
	and or       two or more Booleans; every operand is evaluated, there is
	             no short-circuiting
	- / mod      exactly two Numbers; / truncates toward zero, mod takes the
	             sign of the divisor, a zero divisor is a parameter error
	> <          exactly two Numbers
	not          one Boolean
	print-num    one Number, printed in decimal followed by a newline
	print-bool   one Boolean, printed as #t or #f followed by a newline

Operands of a primitive are all evaluated, left to right, before their types
are checked; a primitive never coerces.

Section 5: Errors

Any error stops the program: output from earlier forms remains, but nothing
after the failed form runs. Errors are undefined symbols, type errors,
parameter errors (like division by zero), and unexpected argument counts.

Recursion uses the Go call stack; the -max-depth flag turns runaway recursion
into an error rather than a stack overflow.

*/
package main
