// Package builder turns a generic element tree rooted at a System element
// into typed model entities.
//
// # Overview
//
// [Build] walks one <System> element and produces a [model.System] plus the
// list of subsystem references it found ([PendingRef]). It never reads
// files: following references is the resolver's job.
//
// The recognized vocabulary:
//
//	<P Name="k">v</P>              property (a Ref attribute overrides the text)
//	<Block SID=".." BlockType="..">  block; <Reference> is a block of type Reference
//	<PortCounts in="2" out="1"/>   synthesizes in:1, in:2, out:1
//	<PortProperties><Port Type="out" Index="1">  declares or annotates a port
//	<System Ref="system_7"/>       pending subsystem reference
//	<System>...</System>           inline subsystem, built recursively
//	<Line>                         Src/Dst endpoints "SID#kind:index", nested <Branch>
//
// # Validation
//
// Missing required attributes and malformed endpoints fail with
// SCHEMA_VIOLATION; repeated block SIDs or explicit port declarations fail
// with DUPLICATE_ID. Every line endpoint must name a block and port of the
// same system; [Options].InferPorts relaxes the port half of that rule by
// adding missing ports to existing blocks.
package builder
