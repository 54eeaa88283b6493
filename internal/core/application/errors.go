package application

import "errors"

var (
	// ErrNullWallet ...
	ErrNullWallet = errors.New("wallet must not be null")
	// ErrNullNodeClient ...
	ErrNullNodeClient = errors.New("node client must not be null")
	// ErrNullRepository ...
	ErrNullRepository = errors.New("transaction repository must not be null")
	// ErrNullSignatorySet is returned when the node does not know any signatory
	// set yet, hence no deposit address can be derived
	ErrNullSignatorySet = errors.New("node returned no signatory set")
)
