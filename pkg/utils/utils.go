package utils

import (
	"fmt"
	"net"
)

// FindAnyFreePort returns a random port that is not in use.
// It does so by claiming a random open port, then closing it.
func FindAnyFreePort(port *int) error {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return err
	}

	tmpListener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return err
	}

	*port = tmpListener.Addr().(*net.TCPAddr).Port
	return tmpListener.Close()
}

// ExpectPortToBeFree errors if the given port cannot be claimed.
func ExpectPortToBeFree(port int) error {
	addr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("localhost:%v", port))
	if err != nil {
		return err
	}
	tmpListener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %v is not free: %v", port, err)
	}
	return tmpListener.Close()
}
