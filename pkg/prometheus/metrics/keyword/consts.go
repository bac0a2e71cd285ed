package keyword

var (
	SequenceBuilds    = "memlab_sequence_builds_total"    // num of sequence constructions
	WeakHits          = "memlab_weak_hits_total"          // weak handle resolved to a live target
	WeakInvalidations = "memlab_weak_invalidations_total" // weak handle found cleared by the collector
	WeakRebuilds      = "memlab_weak_rebuilds_total"      // silent rebuilds after invalidation (or first build)
	LookasideHits     = "memlab_lookaside_hits_total"     // lookaside store served a resident value
	LookasideRebuilds = "memlab_lookaside_rebuilds_total" // lookaside store rebuilt an evicted or unadmitted value
	Releases          = "memlab_releases_total"           // explicit owner-invoked releases
	FallbackReclaims  = "memlab_fallback_reclaims_total"  // collector-invoked fallback reclaims
	ForcedGCPasses    = "memlab_forced_gc_passes_total"   // admitted forced collection passes
	IOErrorsCaught    = "memlab_io_errors_caught_total"   // handle-still-open delete errors caught
)
