// Package hcl provides the HCL implementation of config.Loader. It is
// responsible for file discovery, parsing, decoding into the schema
// structs and translation into the format-agnostic config.Model.
//
// A document looks like this:
//
//	replica "editor-a" {
//	  topic         = "site-42"
//	  relay_url     = "http://localhost:8090"
//	  persist_seeds = true
//	}
//
//	database {
//	  driver       = "memory"
//	  max_attempts = 3
//	  backoff      = "100ms"
//	}
//
//	vertex "home" {
//	  labels     = ["Page"]
//	  properties = { name = "Home", order = 1 }
//	}
//
//	edge "home-root" {
//	  type  = "ParentPage"
//	  start = "home"
//	  end   = "root"
//	}
//
//	query "published" {
//	  expression = "Page[$0]"
//	  filter "0" {
//	    match = try(P.status, "") == "published"
//	  }
//	}
//
// Property objects keep the key order written in the source, nested
// objects included.
package hcl
