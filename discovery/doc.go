// Package discovery loads units from a YAML rexfile.
//
// Without an explicit file, rexfile.yaml, rexfile.yml and .rex/rexfile.yaml
// are tried in the working directory. A rexfile declares tasks, jobs and
// deployments; jobs and deployment hooks refer to top-level tasks by id or
// declare tasks inline:
//
//	tasks:
//	  - id: build
//	    run: go build ./...
//	  - id: test
//	    needs: [build]
//	    run: go test ./...
//	    if: "!env.SKIP_TESTS"
//	jobs:
//	  - id: ci
//	    tasks: [build, test]
//	deployments:
//	  - id: api
//	    run: kubectl apply -f deploy/
//	    hooks:
//	      before:deploy:
//	        - id: migrate
//	          run: make migrate
//	setup: [build]
//
// The discovery pipeline (Locate, Load, Check, Build) follows the pipeline
// package conventions, so callers may add middlewares around it.
package discovery
