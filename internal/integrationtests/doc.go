// Package integrationtests runs whole documents through the app: loading,
// hydration, persistence through the bridge and query evaluation.
package integrationtests
