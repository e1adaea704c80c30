/*
Package main provides end-to-end testing for the conveyor pipeline against a
real Podman socket.

# Package Structure

	test/e2e/
	├── main.go   Entry point: flags, config, logger, Ginkgo runner
	├── tests.go  Ginkgo test specs (version matrix, service probing)
	└── doc.go    This file

# Running

The suite drives real containers, so it needs a reachable Podman socket and
network access to pull the base images:

	cd test/e2e
	go run . -podman-socket unix:///run/user/1000/podman/podman.sock \
	         -source ../../testdata/helloapp

Flags:

	-podman-socket  Podman socket path (default rootless user socket)
	-source         Project under test (default testdata/helloapp)
	-versions       Versions for the matrix scenario (default "3.10,3.11,3.12")

# Scenarios

  - Version matrix: the fixture's unit suite runs once per interpreter
    version, branches aggregate in input order, and a broken version is
    reported without aborting the healthy ones.
  - Service probing: the fixture service starts once, a probe container joins
    its network by alias, and the HTTP contract (200/404/405) is verified
    from inside that network. The delegated pytest e2e suite runs last.

The first scenario pulls one base image per version; expect the first run to
be slow on a cold image store.
*/
package main
