// Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config hosts non-user-configurable parameters for the core analysis packages, plus
// the user-facing Config the CLI shell populates from flags.
package config

// This file hosts non-user-configurable parameters --- these are for development and testing
// purposes only.

// MaxEvalDepth is a recursion-depth limit for the abstract-evaluation driver. No package in
// this module reads it: package evalengine recurses with no depth limit.
const MaxEvalDepth = 256

// MaxRDWalkSteps is a step limit for the reaching-definitions walk. No package in this module
// reads it: package dataflow's walk relies on its path-membership check alone.
const MaxRDWalkSteps = 10000

// MaxDataflowFixpointRounds is a round limit for the interprocedural data/control-dependency
// extension ("union over all call sites of f"). No package in this module reads it: package
// dataflow's call-site extension does not iterate in rounds.
const MaxDataflowFixpointRounds = 8

// DefaultSMTTimeoutMillis is the default value, in milliseconds, of config.Config's
// SMTTimeoutMillis (the -smt-timeout flag). No solver in this module is given a timeout.
const DefaultSMTTimeoutMillis = 5000

// PplcheckPkgPathPrefix is the package prefix for this module. No package in this module
// reads it.
const PplcheckPkgPathPrefix = "go.uber.org/pplcheck"

// DirLevelsToPrintForViolations is a number of enclosing directories to print for a
// finding's source location. No package in this module reads it: internal/render prints
// paths relative to the working directory (tokenhelper.RelToCwd).
const DirLevelsToPrintForViolations = 1
